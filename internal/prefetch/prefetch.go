// Package prefetch warms up exercise videos ahead of a workout so that playback starts without buffering.
package prefetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency = 4
	requestTimeout     = 30 * time.Second
	// maxBodySize caps how much of a single asset is downloaded.
	maxBodySize = 64 << 20
)

// Prefetcher downloads the video of every exercise in a plan in the background.
type Prefetcher struct {
	ctx         context.Context //nolint:containedctx // bounds the lifetime of background downloads.
	logger      *slog.Logger
	client      *http.Client
	baseURL     string
	concurrency int
	wg          sync.WaitGroup
}

// New creates a Prefetcher that fetches baseURL/<exercise-slug>. Downloads stop when ctx is done.
// A concurrency below 1 uses the default of 4 parallel downloads.
func New(ctx context.Context, logger *slog.Logger, baseURL string, concurrency int) *Prefetcher {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Prefetcher{
		ctx:         ctx,
		logger:      logger,
		client:      &http.Client{Timeout: requestTimeout}, //nolint:exhaustruct // defaults.
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		concurrency: concurrency,
		wg:          sync.WaitGroup{},
	}
}

// Prefetch starts downloading the videos of names and returns immediately. Failures are logged.
func (p *Prefetcher) Prefetch(names []string) {
	names = unique(names)
	if len(names) == 0 {
		return
	}
	p.wg.Go(func() {
		p.fetchAll(names)
	})
}

// Wait blocks until every started download has finished.
func (p *Prefetcher) Wait() {
	p.wg.Wait()
}

func (p *Prefetcher) fetchAll(names []string) {
	start := time.Now()
	var failed atomic.Int64
	g, ctx := errgroup.WithContext(p.ctx)
	g.SetLimit(p.concurrency)
	for _, name := range names {
		g.Go(func() error {
			if err := p.fetch(ctx, name); err != nil {
				failed.Add(1)
				if ctx.Err() == nil {
					p.logger.LogAttrs(ctx, slog.LevelWarn, "prefetch failed",
						slog.String("exercise", name), slog.Any("error", err))
				}
			}
			// One missing video must not cancel the others.
			return nil
		})
	}
	_ = g.Wait()
	p.logger.LogAttrs(p.ctx, slog.LevelDebug, "prefetch finished",
		slog.Int("exercises", len(names)),
		slog.Int64("failed", failed.Load()),
		slog.Duration("duration", time.Since(start)))
}

func (p *Prefetcher) fetch(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, VideoURL(p.baseURL, name), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if _, err = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize)); err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	return nil
}

// VideoURL returns the address of the video for an exercise, e.g. "Push-up" becomes baseURL/push-up.
func VideoURL(baseURL, name string) string {
	slug := strings.Join(strings.Fields(strings.ToLower(name)), "-")
	return strings.TrimSuffix(baseURL, "/") + "/" + url.PathEscape(slug)
}

func unique(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
