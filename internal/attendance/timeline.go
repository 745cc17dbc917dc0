package attendance

import "sort"

// MergeTimeline reconciles past daywise records with upcoming schedule
// entries into one per-course view: the past block first, most recent day on
// top, then the upcoming block soonest first. The blocks are never
// interleaved; history and forecast stay visually distinct. Entries without a
// parseable date are kept (status and time slot are still informative) and
// sort as oldest in the past block and latest in the upcoming block.
func MergeTimeline(past, upcoming []DaywiseEntry) []DaywiseEntry {
	out := make([]DaywiseEntry, 0, len(past)+len(upcoming))
	out = append(out, past...)
	sort.SliceStable(out, func(i, j int) bool {
		return dateOr(out[i], "") > dateOr(out[j], "")
	})

	up := make([]DaywiseEntry, len(upcoming))
	copy(up, upcoming)
	sort.SliceStable(up, func(i, j int) bool {
		return dateOr(up[i], "9999-12-31") < dateOr(up[j], "9999-12-31")
	})

	return append(out, up...)
}

// dateOr lets nil dates take an explicit sort position. ISO-8601 strings
// order lexicographically the same as chronologically.
func dateOr(e DaywiseEntry, fallback string) string {
	if e.Date == nil || *e.Date == "" {
		return fallback
	}
	return *e.Date
}
