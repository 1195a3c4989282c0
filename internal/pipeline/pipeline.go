// Package pipeline runs one fetch, dedup, enrich and publish cycle.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/lukman83/promobot/internal/copywriter"
	"github.com/lukman83/promobot/internal/metrics"
	"github.com/lukman83/promobot/internal/models"
	"github.com/lukman83/promobot/internal/publisher"
	"github.com/lukman83/promobot/internal/runlock"
	"github.com/lukman83/promobot/internal/source"
	"github.com/lukman83/promobot/internal/store"
)

// MaxCandidates caps how many new products one run publishes.
const MaxCandidates = 3

const lockKey = "promobot:pipeline:run"

type Options struct {
	Keywords    []string
	Limit       int           // products requested per source
	Sort        string        // forwarded to sources, not used for ranking
	SendDelay   time.Duration // pause between consecutive channel calls
	Concurrency int           // copy generation fan-out
	LockTTL     time.Duration
}

// Summary reports what a run did. Runs never panic or return errors; failures
// end up in Error and in the per-publish Results.
type Summary struct {
	RunID         string             `json:"run_id"`
	Keyword       string             `json:"keyword"`
	Fetched       int                `json:"fetched"`
	Candidates    int                `json:"candidates"`
	AlreadyPosted int                `json:"already_posted"`
	Selected      []string           `json:"selected"`
	Published     int                `json:"published"`
	Failed        int                `json:"failed"`
	Results       []publisher.Result `json:"results"`
	Skipped       bool               `json:"skipped,omitempty"`
	Error         string             `json:"error,omitempty"`
	StartedAt     time.Time          `json:"started_at"`
	Duration      time.Duration      `json:"duration"`
}

type Pipeline struct {
	sources    *source.Registry
	store      store.Store
	generator  copywriter.Generator
	publishers []*publisher.Publisher
	locker     runlock.Locker
	opts       Options
	logger     *log.Logger

	pick  func([]string) string
	sleep func(context.Context, time.Duration) error
	now   func() time.Time
}

func New(
	sources *source.Registry,
	st store.Store,
	gen copywriter.Generator,
	publishers []*publisher.Publisher,
	locker runlock.Locker,
	opts Options,
	logger *log.Logger,
) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	if locker == nil {
		locker = runlock.Noop{}
	}
	if gen == nil {
		gen = copywriter.Disabled
	}
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	if opts.SendDelay < 0 {
		opts.SendDelay = 0
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Minute
	}
	return &Pipeline{
		sources:    sources,
		store:      st,
		generator:  gen,
		publishers: publishers,
		locker:     locker,
		opts:       opts,
		logger:     logger,
		pick:       randomKeyword,
		sleep:      sleepCtx,
		now:        time.Now,
	}
}

// Run picks a random configured keyword and runs the cycle.
func (p *Pipeline) Run(ctx context.Context) Summary {
	return p.RunKeyword(ctx, "")
}

// RunKeyword runs the cycle for keyword, or a random configured keyword when
// keyword is empty.
func (p *Pipeline) RunKeyword(ctx context.Context, keyword string) Summary {
	start := p.now()
	sum := Summary{RunID: uuid.NewString(), StartedAt: start}
	defer func() {
		sum.Duration = p.now().Sub(start)
		metrics.ObserveRunDuration(sum.Duration)
		switch {
		case sum.Skipped:
			metrics.IncRun("skipped")
		case sum.Error != "":
			metrics.IncRun("error")
		default:
			metrics.IncRun("ok")
		}
	}()

	if keyword == "" {
		if len(p.opts.Keywords) == 0 {
			sum.Error = "no keywords configured"
			return sum
		}
		keyword = p.pick(p.opts.Keywords)
	}
	sum.Keyword = keyword

	unlock, ok, err := p.locker.TryLock(ctx, lockKey, p.opts.LockTTL)
	if err != nil {
		p.logger.Printf("[pipeline] %s: run lock unavailable, continuing unlocked: %v", sum.RunID, err)
		unlock = func() {}
	} else if !ok {
		p.logger.Printf("[pipeline] %s: another run holds the lock, skipping", sum.RunID)
		sum.Skipped = true
		return sum
	}
	defer unlock()

	p.logger.Printf("[pipeline] %s: run started, keyword=%q", sum.RunID, keyword)

	// Fetch
	q := source.Query{Keyword: keyword, Limit: p.opts.Limit, Sort: p.opts.Sort}
	var lists [][]models.Product
	for _, a := range p.sources.All() {
		source.ReportProgress(ctx, fmt.Sprintf("Searching '%s' on %s...", keyword, a.Name()))
		products := a.Search(ctx, q)
		metrics.AddFetched(a.Name(), len(products))
		sum.Fetched += len(products)
		lists = append(lists, products)
	}

	// Merge
	candidates := source.Merge(lists...)
	sum.Candidates = len(candidates)
	if len(candidates) == 0 {
		p.logger.Printf("[pipeline] %s: no candidates for %q", sum.RunID, keyword)
		return sum
	}

	// Dedup filter
	fresh, posted, err := store.Filter(ctx, p.store, candidates)
	if err != nil {
		sum.Error = fmt.Sprintf("dedup filter: %v", err)
		p.logger.Printf("[pipeline] %s: %s", sum.RunID, sum.Error)
		return sum
	}
	sum.AlreadyPosted = len(posted)
	metrics.AddAlreadyPosted(len(posted))
	fresh = capCandidates(fresh)
	for _, f := range fresh {
		sum.Selected = append(sum.Selected, f.ID)
	}
	if len(fresh) == 0 {
		p.logger.Printf("[pipeline] %s: all %d candidates already posted", sum.RunID, len(candidates))
		return sum
	}

	// Enrich
	source.ReportProgress(ctx, fmt.Sprintf("Generating copy for %d products...", len(fresh)))
	enriched := copywriter.Enrich(ctx, p.generator, fresh, p.opts.Concurrency, p.logger)
	for _, e := range enriched {
		if e.GeneratedMessage == "" {
			metrics.IncGenerationFailure()
		}
	}

	// Publish
	sent := 0
	for _, product := range enriched {
		for _, pub := range p.publishers {
			if !pub.Configured() {
				sum.Results = append(sum.Results, pub.Publish(ctx, product))
				sum.Failed++
				continue
			}
			if sent > 0 && p.opts.SendDelay > 0 {
				if err := p.sleep(ctx, p.opts.SendDelay); err != nil {
					sum.Error = fmt.Sprintf("publish interrupted: %v", err)
					return sum
				}
			}
			source.ReportProgress(ctx, fmt.Sprintf("Publishing %s to %s...", product.ID, pub.Channel()))
			res := pub.Publish(ctx, product)
			sent++
			sum.Results = append(sum.Results, res)
			if res.Success {
				sum.Published++
			} else {
				sum.Failed++
			}
		}
	}

	p.logger.Printf("[pipeline] %s: done, keyword=%q candidates=%d new=%d published=%d failed=%d",
		sum.RunID, keyword, sum.Candidates, len(fresh), sum.Published, sum.Failed)
	return sum
}

func capCandidates(products []models.Product) []models.Product {
	if len(products) > MaxCandidates {
		return products[:MaxCandidates]
	}
	return products
}

func randomKeyword(keywords []string) string {
	return keywords[rand.IntN(len(keywords))]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
