package ocr

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/citeline/chronology-core/internal/domain"
)

// Resolver is the only intra-run concurrent component: it fans a page's
// worth of OCR requests out across a bounded worker pool, in front of the
// shared cache and circuit breaker, per the §5 resource and concurrency
// model. Everything else in a run is single-threaded.
type Resolver struct {
	engine  domain.OCREngine
	cache   *Cache
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	cfg     domain.OCRConfig
	log     *logrus.Logger
}

// NewResolver builds a page-text resolver around an OCR engine collaborator.
func NewResolver(engine domain.OCREngine, cache *Cache, cfg domain.OCRConfig, log *logrus.Logger) *Resolver {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Resolver{
		engine:  engine,
		cache:   cache,
		breaker: newBreaker(log),
		limiter: rate.NewLimiter(rate.Limit(workers), workers),
		cfg:     cfg,
		log:     log,
	}
}

// needsOCR reports whether a page should be sent to the OCR engine rather
// than used as-is, honoring the §6 OCR_MODE toggle (full/fast/sample/off).
func (r *Resolver) needsOCR(pageIndex int, totalPages int) bool {
	if r.cfg.Disabled || r.cfg.Mode == "off" {
		return false
	}
	switch r.cfg.Mode {
	case "fast":
		return pageIndex < r.cfg.FastLimit
	case "sample":
		every := r.cfg.SampleEvery
		if every <= 0 {
			every = 1
		}
		return pageIndex%every == 0
	default: // "full"
		return true
	}
}

// ResolveAll fills in Text/TextSource for every page of sourceDoc that has
// no embedded text layer, bounded by OCR_WORKERS concurrent requests and the
// overall OCR_TOTAL_TIMEOUT_SECONDS budget. A page whose OCR fails or times
// out is left with empty text and reported as a warning; it does not fail
// the run (§5 "degraded OCR").
func (r *Resolver) ResolveAll(ctx context.Context, sourceDoc domain.SourceDocument, pages []*domain.Page) []domain.Warning {
	if len(pages) == 0 {
		return nil
	}

	total := r.cfg.TotalTimeout()
	if total > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, total)
		defer cancel()
	}

	warnings := make([]domain.Warning, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInt(r.cfg.Workers, 1))

	for i, page := range pages {
		i, page := i, page
		if page.TextSource == domain.TextEmbedded && page.Text != "" {
			continue
		}
		if !r.needsOCR(i, len(pages)) {
			continue
		}
		g.Go(func() error {
			if err := r.limiter.Wait(gctx); err != nil {
				return nil
			}
			warn := r.resolveOne(gctx, sourceDoc, page)
			if warn != nil {
				warnings[i] = *warn
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.Warning, 0, len(warnings))
	for _, w := range warnings {
		if w.Code != "" {
			out = append(out, w)
		}
	}
	return out
}

func (r *Resolver) resolveOne(ctx context.Context, sourceDoc domain.SourceDocument, page *domain.Page) *domain.Warning {
	key := CacheKey{
		SourceDocumentID: sourceDoc.DocumentID,
		SHA256:           sourceDoc.SHA256,
		PageNumber:       page.PageNumber,
		DPI:              r.cfg.DPI,
	}

	if text, source, found, err := r.cache.Get(ctx, key); err == nil && found {
		page.Text = text
		page.TextSource = source
		return nil
	}

	timeout := r.cfg.Timeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	pageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := r.breaker.Execute(func() (any, error) {
		text, source, err := r.engine.TextFor(pageCtx, sourceDoc.DocumentID, page.PageNumber, r.cfg.DPI)
		if err != nil {
			return nil, err
		}
		return [2]any{text, source}, nil
	})
	if err != nil {
		if r.log != nil {
			r.log.WithFields(logrus.Fields{
				"source_document_id": sourceDoc.DocumentID,
				"page_number":        page.PageNumber,
			}).WithError(err).Warn("ocr page resolution failed")
		}
		return &domain.Warning{
			Code:    domain.WarnOCRUnavailable,
			Message: fmt.Sprintf("page %d: %v", page.PageNumber, err),
		}
	}

	pair := result.([2]any)
	text, source := pair[0].(string), pair[1].(domain.TextSource)

	page.Text = text
	page.TextSource = source

	if putErr := r.cache.Put(ctx, key, text, source); putErr != nil && r.log != nil {
		r.log.WithError(putErr).Debug("ocr cache write failed")
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
