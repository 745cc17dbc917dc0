package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campuslens/internal/attendance"
	"campuslens/internal/httpmiddleware"
	"campuslens/internal/normalize"
	"campuslens/internal/portal"
	"campuslens/internal/telemetry"
)

// Handler serves the attendance operations. It holds no per-request state;
// credentials arrive with each request and die with it.
type Handler struct {
	portal *portal.Client
}

// New creates a handler backed by a portal client.
func New(p *portal.Client) *Handler {
	return &Handler{portal: p}
}

// credentials is the wire shape shared by every operation. Field names are
// part of the contract with the UI layer.
type credentials struct {
	CyberID   string `json:"cyberId" binding:"required"`
	CyberPass string `json:"cyberPass" binding:"required"`
}

func (cr credentials) portal() portal.Credentials {
	return portal.Credentials{ID: cr.CyberID, Password: cr.CyberPass}
}

// ---------- Health ----------

// Healthz reports service liveness; redis state is attached by main when the
// redis limiter backend is active.
func (h *Handler) Healthz(extra func(c *gin.Context) (string, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "ok"}
		if extra != nil {
			name, healthy := extra(c)
			body[name] = healthy
			if !healthy {
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, body)
	}
}

// ---------- Summary ----------

// Summary authenticates, pulls the course roster and returns canonical
// records plus the weighted overall percentage. ?format=csv returns the
// original export instead of JSON.
func (h *Handler) Summary(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
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
		log.Printf("request %s: summary dropped %d invalid course records", requestID(c), dropped)
	}

	if c.Query("format") == "csv" {
		writeSummaryCSV(c, records)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requestId":         requestID(c),
		"student":           normalize.Profile(payload),
		"courses":           records,
		"overallPercentage": attendance.OverallPercentage(records),
		"droppedRecords":    dropped,
	})
}

func writeSummaryCSV(c *gin.Context, records []attendance.CourseRecord) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=attendance_summary_%s.csv", time.Now().Format("2006-01-02")))

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Course Code", "Course Name", "Component", "Total Classes", "Present Classes", "Percentage"})
	for _, r := range records {
		_ = w.Write([]string{
			r.CourseCode,
			r.CourseName,
			r.ComponentName,
			fmt.Sprintf("%d", r.TotalClasses),
			fmt.Sprintf("%d", r.PresentClasses),
			fmt.Sprintf("%.2f", r.Percentage),
		})
	}
	w.Flush()
}

// ---------- Daywise ----------

type daywiseRequest struct {
	credentials
	CourseID     *int64 `json:"courseId" binding:"required"`
	CourseCompID *int64 `json:"courseCompId" binding:"required"`
	StudentID    *int64 `json:"studentId" binding:"required"`
	SessionID    *int64 `json:"sessionId"`
}

// Daywise returns the past attendance records for one course component,
// most recent day first. Missing correlation identifiers are rejected before
// any portal session is spent.
func (h *Handler) Daywise(c *gin.Context) {
	var req daywiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := h.fetchDaywise(c, req.portal(), portal.DaywiseQuery{
		CourseID:     *req.CourseID,
		CourseCompID: *req.CourseCompID,
		StudentID:    *req.StudentID,
		SessionID:    req.SessionID,
	})
	if err != nil {
		h.portalError(c, err)
		return
	}

	entries := attendance.MergeTimeline(normalize.Daywise(payload), nil)
	c.JSON(http.StatusOK, gin.H{
		"requestId": requestID(c),
		"entries":   entries,
	})
}

// ---------- Schedule ----------

type scheduleRequest struct {
	credentials
	WeekStartDate string `json:"weekStartDate"`
	WeekEndDate   string `json:"weekEndDate"`
}

// Schedule returns raw schedule rows for a date range, defaulting to the
// next 30 days. Rows come back unfiltered; per-course filtering happens in
// the timeline operation or client-side.
func (h *Handler) Schedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, end, err := scheduleRange(req.WeekStartDate, req.WeekEndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := h.fetchSchedule(c, req.portal(), start, end)
	if err != nil {
		h.portalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requestId":     requestID(c),
		"weekStartDate": start,
		"weekEndDate":   end,
		"data":          payload.Data,
	})
}

// Timetable returns the current week's schedule, Monday through Sunday.
func (h *Handler) Timetable(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, end := currentWeek(time.Now())
	payload, err := h.fetchSchedule(c, req.portal(), start, end)
	if err != nil {
		h.portalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requestId":     requestID(c),
		"weekStartDate": start,
		"weekEndDate":   end,
		"data":          payload.Data,
	})
}

const isoDate = "2006-01-02"

func scheduleRange(start, end string) (string, string, error) {
	if start == "" && end == "" {
		now := time.Now()
		return now.Format(isoDate), now.AddDate(0, 0, 30).Format(isoDate), nil
	}
	if _, err := time.Parse(isoDate, start); err != nil {
		return "", "", fmt.Errorf("weekStartDate must be YYYY-MM-DD")
	}
	e, err := time.Parse(isoDate, end)
	if err != nil {
		return "", "", fmt.Errorf("weekEndDate must be YYYY-MM-DD")
	}
	if s, _ := time.Parse(isoDate, start); e.Before(s) {
		return "", "", fmt.Errorf("weekEndDate before weekStartDate")
	}
	return start, end, nil
}

// currentWeek returns the Monday and Sunday enclosing t.
func currentWeek(t time.Time) (string, string) {
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	monday := t.AddDate(0, 0, -offset)
	return monday.Format(isoDate), monday.AddDate(0, 0, 6).Format(isoDate)
}

// ---------- Portal access with telemetry ----------

func (h *Handler) fetchSummary(c *gin.Context, creds portal.Credentials) (*portal.SummaryPayload, error) {
	start := time.Now()
	p, err := h.portal.FetchSummary(c.Request.Context(), creds)
	telemetry.ObservePortal("summary", err, time.Since(start))
	return p, err
}

func (h *Handler) fetchDaywise(c *gin.Context, creds portal.Credentials, q portal.DaywiseQuery) (*portal.DaywisePayload, error) {
	start := time.Now()
	p, err := h.portal.FetchDaywise(c.Request.Context(), creds, q)
	telemetry.ObservePortal("daywise", err, time.Since(start))
	return p, err
}

func (h *Handler) fetchSchedule(c *gin.Context, creds portal.Credentials, startDate, endDate string) (*portal.SchedulePayload, error) {
	start := time.Now()
	p, err := h.portal.FetchSchedule(c.Request.Context(), creds, startDate, endDate)
	telemetry.ObservePortal("schedule", err, time.Since(start))
	return p, err
}

// ---------- Error mapping ----------

// portalError maps the broker/normalizer taxonomy onto HTTP statuses.
// Credential and validation problems get precise messages; upstream faults
// get a generic retry message that leaks no internal structure.
func (h *Handler) portalError(c *gin.Context, err error) {
	id := requestID(c)
	switch {
	case errors.Is(err, portal.ErrAuthenticationFailed):
		c.JSON(http.StatusUnauthorized, gin.H{
			"requestId": id,
			"error":     "the portal rejected these credentials; check your ID and password",
		})
	case errors.Is(err, portal.ErrUnavailable):
		log.Printf("request %s: portal unavailable: %v", id, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"requestId": id,
			"error":     "the academic portal is not responding, please try again shortly",
		})
	case errors.Is(err, portal.ErrBadShape):
		log.Printf("request %s: portal payload shape changed: %v", id, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"requestId": id,
			"error":     "could not read data from the portal, please try again later",
		})
	default:
		log.Printf("request %s: unexpected error: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"requestId": id,
			"error":     "internal error",
		})
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(httpmiddleware.RequestIDKey)
}
