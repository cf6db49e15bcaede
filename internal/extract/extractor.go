package extract

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"FolioScraper/internal/broker"
	"FolioScraper/internal/model"
	"FolioScraper/internal/normalize"
	"FolioScraper/internal/page"
	"FolioScraper/internal/strategy"
)

const (
	DefaultAttempts = 5
	DefaultDelay    = 700 * time.Millisecond
)

// Result is the outcome of one full extraction invocation.
type Result struct {
	ID       string          `json:"id"`
	Broker   model.Broker    `json:"broker"`
	Holdings []model.Holding `json:"holdings"`
	Attempts int             `json:"attempts"`
	Duration time.Duration   `json:"-"`
}

// Extractor drives repeated extraction passes until one yields holdings or
// the retry budget runs out. An exhausted budget is not an error, only
// "no data available yet".
type Extractor struct {
	Source     page.Source
	Detector   *broker.Detector
	Registry   *strategy.Registry
	Normalizer *normalize.Normalizer
	Attempts   int
	Delay      time.Duration

	sleep func(ctx context.Context, d time.Duration)
}

// New creates an Extractor with the default retry budget and delay.
func New(src page.Source, det *broker.Detector, reg *strategy.Registry, norm *normalize.Normalizer, attempts int, delay time.Duration) *Extractor {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Extractor{
		Source:     src,
		Detector:   det,
		Registry:   reg,
		Normalizer: norm,
		Attempts:   attempts,
		Delay:      delay,
		sleep:      ctxSleep,
	}
}

func ctxSleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Extract runs one full pipeline invocation: per attempt it recaptures the
// page, detects the broker, enumerates documents, and walks the strategy
// chain until a strategy yields holdings post-normalization. Only a page
// capture failure is an error; everything in-page degrades to an empty result.
func (e *Extractor) Extract(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{ID: uuid.NewString(), Broker: model.BrokerUnknown}

	for attempt := 1; ; attempt++ {
		res.Attempts = attempt

		pg, err := e.Source.Capture(ctx)
		if err != nil {
			return nil, fmt.Errorf("capture page: %w", err)
		}
		res.Broker = e.Detector.Detect(pg.Hostname)
		docs := page.Enumerate(pg)

		if holdings := e.runChain(res.Broker, docs); len(holdings) > 0 {
			res.Holdings = holdings
			res.Duration = time.Since(start)
			return res, nil
		}

		if attempt >= e.Attempts {
			log.Printf("[INFO] retry budget exhausted after %d attempts, no holdings found", attempt)
			res.Holdings = []model.Holding{}
			res.Duration = time.Since(start)
			return res, nil
		}
		log.Printf("[INFO] attempt %d/%d found no holdings, retrying in %v", attempt, e.Attempts, e.Delay)
		e.sleep(ctx, e.Delay)
	}
}

// runChain tries each strategy in broker order and stops at the first one
// whose output survives normalization. Later strategies are never invoked;
// running them all would double-count rows on pages where only one layout
// is structurally valid.
func (e *Extractor) runChain(b model.Broker, docs []page.Document) []model.Holding {
	for _, s := range e.Registry.ChainFor(b) {
		raw := s.Extract(docs)
		if len(raw) == 0 {
			continue
		}
		if holdings := e.Normalizer.Normalize(raw); len(holdings) > 0 {
			log.Printf("[INFO] strategy %q matched: %d holdings from %d raw records", s.Name(), len(holdings), len(raw))
			return holdings
		}
	}
	return nil
}
