package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"campuslens/internal/attendance"
	"campuslens/internal/normalize"
	"campuslens/internal/portal"
)

// ---------- Timeline ----------

type timelineRequest struct {
	daywiseRequest
	CourseCode    string `json:"courseCode"`
	CourseName    string `json:"courseName"`
	WeekStartDate string `json:"weekStartDate"`
	WeekEndDate   string `json:"weekEndDate"`
}

// Timeline merges one course's past daywise records with its upcoming
// scheduled classes: history first (most recent on top), then the forecast
// soonest first. When the schedule fetch fails after the daywise fetch
// succeeded, the past half is still returned with partial=true instead of
// failing the whole request.
func (h *Handler) Timeline(c *gin.Context) {
	var req timelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.CourseCode == "" && req.CourseName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "courseCode or courseName required to match schedule rows"})
		return
	}
	start, end, err := scheduleRange(req.WeekStartDate, req.WeekEndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	daywise, err := h.fetchDaywise(c, req.portal(), portal.DaywiseQuery{
		CourseID:     *req.CourseID,
		CourseCompID: *req.CourseCompID,
		StudentID:    *req.StudentID,
		SessionID:    req.SessionID,
	})
	if err != nil {
		h.portalError(c, err)
		return
	}
	past := normalize.Daywise(daywise)

	var upcoming []attendance.DaywiseEntry
	partial := false
	schedule, err := h.fetchSchedule(c, req.portal(), start, end)
	switch {
	case err == nil:
		upcoming = normalize.Schedule(schedule.Data, req.CourseCode, req.CourseName)
	case errors.Is(err, portal.ErrAuthenticationFailed):
		// The first fetch authenticated fine, so this is not a bad password;
		// treat it like any other upstream fault and degrade.
		fallthrough
	default:
		log.Printf("request %s: timeline degraded to past-only: %v", requestID(c), err)
		partial = true
	}

	c.JSON(http.StatusOK, gin.H{
		"requestId": requestID(c),
		"entries":   attendance.MergeTimeline(past, upcoming),
		"partial":   partial,
	})
}

// ---------- Projection ----------

type projectionRequest struct {
	credentials
	Target        *int           `json:"target" binding:"required"`
	PlannedMisses map[string]int `json:"plannedMisses"`
}

// Projection fetches the live summary and simulates planned future misses
// per course against the target percentage. Courses are independent; there
// is no shared miss budget.
func (h *Handler) Projection(c *gin.Context) {
	var req projectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target := *req.Target
	if target < 1 || target > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target must be between 1 and 100"})
		return
	}

	payload, err := h.fetchSummary(c, req.portal())
	if err != nil {
		h.portalError(c, err)
		return
	}
	records, dropped, err := normalize.CourseList(payload)
	if err != nil {
		h.portalError(c, err)
		return
	}
	if dropped > 0 {
		log.Printf("request %s: projection dropped %d invalid course records", requestID(c), dropped)
	}

	c.JSON(http.StatusOK, gin.H{
		"requestId": requestID(c),
		"target":    target,
		"results":   attendance.Simulate(records, req.PlannedMisses, target),
	})
}
