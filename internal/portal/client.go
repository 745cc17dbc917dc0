package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"
)

// Credentials authenticate one request against the portal. They live only on
// the call stack of that request: never stored, never cached, never logged.
type Credentials struct {
	ID       string
	Password string
}

// DaywiseQuery carries the correlation identifiers needed to address one
// course component's daywise history.
type DaywiseQuery struct {
	CourseID     int64
	CourseCompID int64
	StudentID    int64
	SessionID    *int64
}

// Client opens short-lived authenticated sessions against the academic
// portal. Every fetch performs its own login and discards the session token
// afterwards regardless of outcome; there is no session reuse across calls.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	// MaxRetries bounds additional attempts after the first, applied only to
	// transient faults. Authentication failures are never retried.
	MaxRetries int
}

// New creates a portal client with a hard ceiling on every call.
func New(baseURL string, timeout time.Duration, maxRetries int) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		BaseURL:    baseURL,
		HTTP:       &http.Client{Timeout: timeout},
		MaxRetries: maxRetries,
	}
}

// FetchSummary logs in and pulls the per-course attendance counters together
// with the student profile.
func (c *Client) FetchSummary(ctx context.Context, creds Credentials) (*SummaryPayload, error) {
	var out SummaryPayload
	err := c.withSession(ctx, creds, func(token string) error {
		return c.get(ctx, "/attendance/course/component/student", nil, token, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchDaywise logs in and pulls the past daywise records for one course
// component.
func (c *Client) FetchDaywise(ctx context.Context, creds Credentials, q DaywiseQuery) (*DaywisePayload, error) {
	params := url.Values{}
	params.Set("courseId", fmt.Sprintf("%d", q.CourseID))
	params.Set("courseCompId", fmt.Sprintf("%d", q.CourseCompID))
	params.Set("studentId", fmt.Sprintf("%d", q.StudentID))
	if q.SessionID != nil {
		params.Set("sessionId", fmt.Sprintf("%d", *q.SessionID))
	}

	var out DaywisePayload
	err := c.withSession(ctx, creds, func(token string) error {
		return c.get(ctx, "/attendance/course/component/student/details", params, token, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchSchedule logs in and pulls scheduled classes between two ISO dates
// inclusive.
func (c *Client) FetchSchedule(ctx context.Context, creds Credentials, startDate, endDate string) (*SchedulePayload, error) {
	params := url.Values{}
	params.Set("weekStartDate", startDate)
	params.Set("weekEndDate", endDate)

	var out SchedulePayload
	err := c.withSession(ctx, creds, func(token string) error {
		return c.get(ctx, "/schedule/classes/week", params, token, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// withSession runs one login+fetch attempt, retrying the whole session on
// transient faults with a jittered delay. The token is a local that goes out
// of scope when the call returns; nothing longer-lived captures it or the
// credentials.
func (c *Client) withSession(ctx context.Context, creds Credentials, fetch func(token string) error) error {
	if creds.ID == "" || creds.Password == "" {
		return ErrAuthenticationFailed
	}

	var err error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			if werr := sleepJitter(ctx, attempt); werr != nil {
				return werr
			}
		}

		var token string
		token, err = c.login(ctx, creds)
		if err == nil {
			err = fetch(token)
		}
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrUnavailable) {
			return err
		}
	}
	return err
}

func (c *Client) login(ctx context.Context, creds Credentials) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"userName": creds.ID,
		"password": creds.Password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build login request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: login: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return "", ErrAuthenticationFailed
	case resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: login: status %s", ErrUnavailable, resp.Status)
	case resp.StatusCode >= 300:
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: login: status %s", ErrBadShape, resp.Status)
	}

	var out struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode login response: %v", ErrBadShape, err)
	}
	if out.Data.Token == "" {
		return "", fmt.Errorf("%w: login response without token", ErrBadShape)
	}
	return out.Data.Token, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, token string, out any) error {
	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "GlobalEducation "+token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return ErrAuthenticationFailed
	case resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s: status %s", ErrUnavailable, path, resp.Status)
	case resp.StatusCode >= 300:
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s: status %s", ErrBadShape, path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrBadShape, path, err)
	}
	return nil
}

// sleepJitter waits before a retry, backing off with the attempt number plus
// random jitter, and bails out early if the caller disconnects.
func sleepJitter(ctx context.Context, attempt int) error {
	delay := time.Duration(attempt)*300*time.Millisecond + time.Duration(rand.Intn(200))*time.Millisecond
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	}
}
