package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsecli/internal/config"
	"tsecli/internal/errors"
	"tsecli/internal/jalali"
)

// recordingServer serves spreadsheet bodies and records every requested date.
type recordingServer struct {
	mu        sync.Mutex
	requested []string
	respond   func(date string, w http.ResponseWriter)
}

func (s *recordingServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("d")
		s.mu.Lock()
		s.requested = append(s.requested, date)
		s.mu.Unlock()
		if s.respond != nil {
			s.respond(date, w)
			return
		}
		w.Write([]byte("xlsx-body-" + date))
	}
}

func (s *recordingServer) dates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requested...)
}

func newTestFetcher(t *testing.T, baseURL string) *Fetcher {
	t.Helper()
	return New(config.FetchConfig{
		BaseURL:           baseURL,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
	}, slog.Default())
}

func TestFetchRange_DownloadsBusinessDays(t *testing.T) {
	srv := &recordingServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	stageDir := t.TempDir()
	fetcher := newTestFetcher(t, ts.URL)

	// 1402-05-01 is Sunday, so the Thursday/Friday weekend falls on
	// 1402-05-05 and 1402-05-06; five business days remain in the range.
	start := jalali.New(1402, 5, 1)
	end := jalali.New(1402, 5, 7)

	summary, err := fetcher.FetchRange(context.Background(), start, end, stageDir)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Downloaded)
	assert.Equal(t, 2, summary.SkippedWeekend)
	assert.Empty(t, summary.Failures)
	assert.Len(t, srv.dates(), 5)

	for _, date := range []string{"1402-05-01", "1402-05-02", "1402-05-03", "1402-05-04", "1402-05-07"} {
		body, err := os.ReadFile(filepath.Join(stageDir, date+".xlsx"))
		require.NoError(t, err)
		assert.Equal(t, "xlsx-body-"+date, string(body))
	}
	for _, date := range []string{"1402-05-05", "1402-05-06"} {
		_, err := os.Stat(filepath.Join(stageDir, date+".xlsx"))
		assert.True(t, os.IsNotExist(err), "weekend date %s must not be staged", date)
	}
}

func TestFetchRange_NeverRequestsWeekends(t *testing.T) {
	srv := &recordingServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	fetcher := newTestFetcher(t, ts.URL)
	start := jalali.New(1402, 5, 1)
	end := jalali.New(1402, 5, 14)

	_, err := fetcher.FetchRange(context.Background(), start, end, t.TempDir())
	require.NoError(t, err)

	for _, d := range srv.dates() {
		parsed, err := jalali.Parse(d)
		require.NoError(t, err)
		assert.False(t, parsed.IsWeekend(), "requested weekend date %s", d)
	}
}

func TestFetchRange_Idempotent(t *testing.T) {
	srv := &recordingServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	stageDir := t.TempDir()
	fetcher := newTestFetcher(t, ts.URL)
	start := jalali.New(1402, 5, 1)
	end := jalali.New(1402, 5, 4)

	first, err := fetcher.FetchRange(context.Background(), start, end, stageDir)
	require.NoError(t, err)
	require.Equal(t, 4, first.Downloaded)
	requestsAfterFirst := len(srv.dates())

	second, err := fetcher.FetchRange(context.Background(), start, end, stageDir)
	require.NoError(t, err)

	assert.Equal(t, 0, second.Downloaded)
	assert.Equal(t, 4, second.SkippedExisting)
	assert.Equal(t, requestsAfterFirst, len(srv.dates()), "second run must issue zero requests")
}

func TestFetchRange_PerDateFailureDoesNotAbort(t *testing.T) {
	srv := &recordingServer{
		respond: func(date string, w http.ResponseWriter) {
			if date == "1402-05-02" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte("xlsx-body-" + date))
		},
	}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	stageDir := t.TempDir()
	fetcher := newTestFetcher(t, ts.URL)

	summary, err := fetcher.FetchRange(context.Background(),
		jalali.New(1402, 5, 1), jalali.New(1402, 5, 3), stageDir)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Downloaded)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "1402-05-02", summary.Failures[0].Date.String())
	assert.True(t, errors.IsType(summary.Failures[0].Err, errors.ErrTypeFetch))

	// The failed date is left unstaged for a resumed run.
	_, statErr := os.Stat(filepath.Join(stageDir, "1402-05-02.xlsx"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchRange_ConnectionErrorIsRecorded(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse every connection

	fetcher := newTestFetcher(t, ts.URL)

	summary, err := fetcher.FetchRange(context.Background(),
		jalali.New(1402, 5, 1), jalali.New(1402, 5, 1), t.TempDir())
	require.NoError(t, err)

	require.Len(t, summary.Failures, 1)
	assert.True(t, errors.IsType(summary.Failures[0].Err, errors.ErrTypeFetch))
}

func TestFetchRange_StartAfterEnd(t *testing.T) {
	fetcher := newTestFetcher(t, "http://unused.test")

	_, err := fetcher.FetchRange(context.Background(),
		jalali.New(1402, 5, 10), jalali.New(1402, 5, 1), t.TempDir())

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeRange))
}

func TestFetchRange_FutureStart(t *testing.T) {
	fetcher := newTestFetcher(t, "http://unused.test")
	start := jalali.Today().AddDays(1)

	_, err := fetcher.FetchRange(context.Background(), start, start.AddDays(5), t.TempDir())

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeFutureDate))
}

func TestFetchRange_StopsAtToday(t *testing.T) {
	srv := &recordingServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	fetcher := newTestFetcher(t, ts.URL)
	today := jalali.Today()

	// End date a week in the future; the loop must halt at today without error.
	summary, err := fetcher.FetchRange(context.Background(),
		today.AddDays(-1), today.AddDays(7), t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, summary)

	for _, d := range srv.dates() {
		parsed, perr := jalali.Parse(d)
		require.NoError(t, perr)
		assert.False(t, parsed.IsFuture(), "requested future date %s", d)
	}
}

func TestFetchRange_ContextCancellation(t *testing.T) {
	srv := &recordingServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	fetcher := newTestFetcher(t, ts.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.FetchRange(ctx, jalali.New(1402, 5, 1), jalali.New(1402, 5, 5), t.TempDir())
	require.ErrorIs(t, err, context.Canceled)
}
