// Package fetch implements the staging stage: one market-watch spreadsheet
// downloaded per business day into the stage directory. The stage is
// resumable by construction; presence of the output file is the only marker
// of "already fetched", so a re-run over the same range issues no request
// for a day that is already on disk.
//
// The loop is strictly sequential. Existence-check-then-write makes re-runs
// across process restarts safe, but concurrent invocations against the same
// stage directory are not supported.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"golang.org/x/time/rate"

	"tsecli/internal/config"
	"tsecli/internal/errors"
	"tsecli/internal/jalali"
)

// marketWatchPath is the TSETMC endpoint serving one spreadsheet per
// business day, selected by the d query parameter.
const marketWatchPath = "/tsev2/excel/MarketWatchPlus.aspx"

// Fetcher downloads market-watch spreadsheets for a range of business days.
type Fetcher struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Fetcher from the fetch configuration.
func New(cfg config.FetchConfig, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  logger,
	}
}

// Failure records one date whose download failed. The date stays unfetched
// and a resumed run will retry it.
type Failure struct {
	Date jalali.BusinessDate
	Err  error
}

// Summary reports what a FetchRange run did.
type Summary struct {
	Downloaded      int
	SkippedExisting int
	SkippedWeekend  int
	Failures        []Failure
}

// FetchRange walks the inclusive date range and stages one spreadsheet per
// business day. Weekends are skipped silently, already-staged days are
// skipped without a request, and the loop stops early at the first future
// date. Per-date download failures are recorded in the summary and do not
// abort the loop; only a bad range or a future start date is an error.
func (f *Fetcher) FetchRange(ctx context.Context, start, end jalali.BusinessDate, stageDir string) (*Summary, error) {
	if start.After(end) {
		return nil, errors.NewRangeError(
			fmt.Sprintf("start date %s is after end date %s", start, end))
	}
	if start.IsFuture() {
		return nil, errors.NewFutureDateError(
			fmt.Sprintf("start date %s is a future date", start))
	}
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return nil, errors.NewStorageError("failed to create stage directory "+stageDir, err)
	}

	paths := config.PathsConfig{StageDir: stageDir}
	summary := &Summary{}

	for date := start; !date.After(end); date = date.AddDays(1) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		// The range may be legitimately truncated by the passage of time
		// between planning and execution; not an error.
		if date.IsFuture() {
			f.logger.Info("reached the current date, stopping",
				slog.String("date", date.String()))
			break
		}

		if date.IsWeekend() {
			summary.SkippedWeekend++
			continue
		}

		dest := paths.StagedFile(date.String())
		if _, err := os.Stat(dest); err == nil {
			summary.SkippedExisting++
			f.logger.Info("already staged, skipping",
				slog.String("date", date.String()),
				slog.String("path", dest))
			continue
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return summary, err
		}

		if err := f.fetchOne(ctx, date, dest); err != nil {
			summary.Failures = append(summary.Failures, Failure{Date: date, Err: err})
			f.logger.Error("download failed, leaving date for a resumed run",
				slog.String("date", date.String()),
				slog.String("error", err.Error()))
			continue
		}
		summary.Downloaded++
	}

	f.logger.Info("fetch range finished",
		slog.Int("downloaded", summary.Downloaded),
		slog.Int("skipped_existing", summary.SkippedExisting),
		slog.Int("skipped_weekend", summary.SkippedWeekend),
		slog.Int("failed", len(summary.Failures)))

	return summary, nil
}

// fetchOne performs the single GET for a date and persists the response body
// verbatim to dest.
func (f *Fetcher) fetchOne(ctx context.Context, date jalali.BusinessDate, dest string) error {
	reqURL := f.baseURL + marketWatchPath + "?d=" + url.QueryEscape(date.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errors.NewFetchError("failed to build request for "+date.String(), err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return errors.NewFetchError(
			fmt.Sprintf("connection error requesting %s.xlsx", date), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewFetchError(
			fmt.Sprintf("HTTP error requesting %s.xlsx: %s", date, resp.Status), nil)
	}

	out, err := os.Create(dest)
	if err != nil {
		return errors.NewStorageError("failed to create "+dest, err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		// Remove the partial file so a resumed run retries this date instead
		// of treating it as staged.
		os.Remove(dest)
		return errors.NewStorageError("failed to write "+dest, err)
	}

	f.logger.Info("spreadsheet saved",
		slog.String("date", date.String()),
		slog.String("path", dest),
		slog.Int64("size_bytes", written))

	return nil
}
