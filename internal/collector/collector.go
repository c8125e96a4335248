// Package collector fetches all configured feeds on a bounded worker pool and
// assembles the digest report.
package collector

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"rss_digest/internal/fetcher"
	"rss_digest/internal/model"
)

// DefaultWorkers is the number of feeds fetched concurrently.
const DefaultWorkers = 10

// Worker fetches a single feed. It must always return a result.
type Worker interface {
	Fetch(ctx context.Context, feed model.FeedDescriptor, cutoff time.Time) model.FeedResult
}

// Prober validates a single feed URL.
type Prober interface {
	Probe(ctx context.Context, url string) (*fetcher.ProbeResult, error)
}

// CheckResult is the outcome of probing one configured feed.
type CheckResult struct {
	Feed  model.FeedDescriptor
	Probe *fetcher.ProbeResult
	Err   error
}

// Collector runs a Worker over every feed and builds the report.
type Collector struct {
	worker  Worker
	workers int
	log     *slog.Logger
	now     func() time.Time
}

// New creates a Collector with DefaultWorkers concurrent fetches.
func New(worker Worker, log *slog.Logger) *Collector {
	return &Collector{
		worker:  worker,
		workers: DefaultWorkers,
		log:     log,
		now:     time.Now,
	}
}

// SetWorkers overrides the pool size. Values below one are ignored.
func (c *Collector) SetWorkers(n int) {
	if n > 0 {
		c.workers = n
	}
}

// Collect fetches all feeds and returns the report for articles published
// within the last hours. Failed feeds are part of the report; the run itself
// cannot fail.
func (c *Collector) Collect(ctx context.Context, feeds []model.FeedDescriptor, hours int) model.Report {
	now := c.now().UTC()
	cutoff := now.Add(-time.Duration(hours) * time.Hour)

	c.log.Info("collecting feeds", "feeds", len(feeds), "hours", hours, "workers", c.workers)

	results := runPool(c.workers, feeds, func(feed model.FeedDescriptor) model.FeedResult {
		res := c.worker.Fetch(ctx, feed, cutoff)
		c.log.Debug("feed done", "name", feed.Name, "status", res.Status, "count", res.Count)
		return res
	})

	SortResults(results)

	report := model.Report{
		Generated:  now,
		Hours:      hours,
		FeedsTotal: len(results),
		Feeds:      results,
	}
	for _, r := range results {
		if r.Status == model.StatusOK {
			report.FeedsOK++
		}
		report.TotalArticles += r.Count
	}

	c.log.Info("collection finished",
		"feeds_ok", report.FeedsOK,
		"feeds_total", report.FeedsTotal,
		"articles", report.TotalArticles,
	)
	return report
}

// Check probes every feed through the same pool and returns the outcomes in
// configuration order.
func (c *Collector) Check(ctx context.Context, prober Prober, feeds []model.FeedDescriptor) []CheckResult {
	return runPool(c.workers, feeds, func(feed model.FeedDescriptor) CheckResult {
		probe, err := prober.Probe(ctx, feed.URL)
		if err != nil {
			c.log.Warn("probe feed", "name", feed.Name, "url", feed.URL, "error", err)
		}
		return CheckResult{Feed: feed, Probe: probe, Err: err}
	})
}

// SortResults orders results with priority feeds first, then by article
// count descending. Ties keep their relative order.
func SortResults(results []model.FeedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Priority != results[j].Priority {
			return results[i].Priority
		}
		return results[i].Count > results[j].Count
	})
}

// runPool applies fn to every job on at most workers goroutines. Results are
// collected as they complete and stored at their job's index, so the output
// follows the input order whatever the completion order.
func runPool[J, R any](workers int, jobs []J, fn func(J) R) []R {
	type task struct {
		idx int
		job J
	}
	type done struct {
		idx int
		res R
	}

	queue := make(chan task)
	results := make(chan done)

	var wg sync.WaitGroup
	for i := 0; i < min(workers, len(jobs)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range queue {
				results <- done{idx: t.idx, res: fn(t.job)}
			}
		}()
	}

	go func() {
		for i, j := range jobs {
			queue <- task{idx: i, job: j}
		}
		close(queue)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]R, len(jobs))
	for d := range results {
		out[d.idx] = d.res
	}
	return out
}

// Watch calls run immediately and then every interval until ctx is
// cancelled.
func Watch(ctx context.Context, interval time.Duration, run func(context.Context)) {
	run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run(ctx)
		}
	}
}
