package portal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{ID: "202412345", Password: "hunter2"}

// fakePortal spins up a portal double that logs in and serves a summary.
func fakePortal(t *testing.T, summaryStatus int, summaryBody string) (*httptest.Server, *int32, *int32) {
	t.Helper()
	var logins, fetches int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			atomic.AddInt32(&logins, 1)
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["userName"] != testCreds.ID || body["password"] != testCreds.Password {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"data":{"token":"tok-123"}}`))
		case "/attendance/course/component/student":
			atomic.AddInt32(&fetches, 1)
			if r.Header.Get("Authorization") != "GlobalEducation tok-123" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(summaryStatus)
			w.Write([]byte(summaryBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &logins, &fetches
}

func TestFetchSummaryHappyPath(t *testing.T) {
	srv, logins, _ := fakePortal(t, http.StatusOK, `{"data":{
		"fullName":"Ankit Kumar",
		"attendanceCourseComponentInfoList":[{"courseCode":"CS101","numberOfPeriods":40,"numberOfPresent":28}]
	}}`)

	c := New(srv.URL, 2*time.Second, 2)
	out, err := c.FetchSummary(context.Background(), testCreds)
	require.NoError(t, err)
	assert.Equal(t, "Ankit Kumar", out.Data.FullName)
	require.Len(t, out.Data.Components, 1)

	total, err := out.Data.Components[0].NumberOfPeriods.Int()
	require.NoError(t, err)
	assert.Equal(t, 40, total)
	assert.Equal(t, int32(1), atomic.LoadInt32(logins), "one session per call")
}

func TestBadCredentialsNotRetried(t *testing.T) {
	srv, logins, _ := fakePortal(t, http.StatusOK, `{}`)

	c := New(srv.URL, 2*time.Second, 2)
	_, err := c.FetchSummary(context.Background(), Credentials{ID: "202412345", Password: "wrong"})
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Equal(t, int32(1), atomic.LoadInt32(logins), "bad logins must not be retried")
}

func TestEmptyCredentialsRejectedWithoutCall(t *testing.T) {
	srv, logins, _ := fakePortal(t, http.StatusOK, `{}`)

	c := New(srv.URL, 2*time.Second, 2)
	_, err := c.FetchSummary(context.Background(), Credentials{})
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Equal(t, int32(0), atomic.LoadInt32(logins))
}

func TestTransientFaultRetriedBounded(t *testing.T) {
	srv, logins, fetches := fakePortal(t, http.StatusBadGateway, `upstream blew up`)

	c := New(srv.URL, 2*time.Second, 2)
	_, err := c.FetchSummary(context.Background(), testCreds)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(logins), "initial attempt plus two retries")
	assert.Equal(t, int32(3), atomic.LoadInt32(fetches))
}

func TestRetryRecovers(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			w.Write([]byte(`{"data":{"token":"tok-123"}}`))
			return
		}
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":{"fullName":"Ankit Kumar"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second, 2)
	out, err := c.FetchSummary(context.Background(), testCreds)
	require.NoError(t, err)
	assert.Equal(t, "Ankit Kumar", out.Data.FullName)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestMalformedPayloadNotRetried(t *testing.T) {
	srv, logins, _ := fakePortal(t, http.StatusOK, `<html>maintenance window</html>`)

	c := New(srv.URL, 2*time.Second, 2)
	_, err := c.FetchSummary(context.Background(), testCreds)
	assert.ErrorIs(t, err, ErrBadShape)
	assert.Equal(t, int32(1), atomic.LoadInt32(logins), "shape errors are deterministic, never retried")
}

func TestCallerCancellationAbandonsCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background read; otherwise
		// the client disconnect is never noticed, r.Context() never fires,
		// and the deferred srv.Close() blocks forever.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	c := New(srv.URL, 30*time.Second, 0)
	start := time.Now()
	_, err := c.FetchSummary(ctx, testCreds)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation must abandon the call promptly")
}

func TestFetchDaywiseQueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			w.Write([]byte(`{"data":{"token":"tok-123"}}`))
			return
		}
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":{"attendanceDetails":[]}}`))
	}))
	defer srv.Close()

	sid := int64(12)
	c := New(srv.URL, 2*time.Second, 0)
	_, err := c.FetchDaywise(context.Background(), testCreds, DaywiseQuery{
		CourseID: 31, CourseCompID: 501, StudentID: 9001, SessionID: &sid,
	})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "courseId=31")
	assert.Contains(t, gotQuery, "courseCompId=501")
	assert.Contains(t, gotQuery, "studentId=9001")
	assert.Contains(t, gotQuery, "sessionId=12")
}

func TestCountUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "number", raw: `40`, want: 40},
		{name: "quoted number", raw: `"40"`, want: 40},
		{name: "null", raw: `null`, want: 0},
		{name: "garbage", raw: `"forty"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Count
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &c))
			n, err := c.Int()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}
