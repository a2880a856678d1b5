package ocr

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/citeline/chronology-core/internal/domain"
)

type fakeEngine struct {
	calls int
}

func (f *fakeEngine) TextFor(ctx context.Context, sourceDocumentID string, pageNumber int, dpi int) (string, domain.TextSource, error) {
	f.calls++
	return "recognized text", domain.TextOCR, nil
}

func TestResolverNeedsOCR(t *testing.T) {
	cfg := domain.OCRConfig{Mode: "fast", FastLimit: 2, Workers: 2}
	r := &Resolver{cfg: cfg}

	assert.True(t, r.needsOCR(0, 5))
	assert.True(t, r.needsOCR(1, 5))
	assert.False(t, r.needsOCR(2, 5))
}

func TestResolverSampleMode(t *testing.T) {
	cfg := domain.OCRConfig{Mode: "sample", SampleEvery: 3, Workers: 2}
	r := &Resolver{cfg: cfg}

	assert.True(t, r.needsOCR(0, 10))
	assert.False(t, r.needsOCR(1, 10))
	assert.False(t, r.needsOCR(2, 10))
	assert.True(t, r.needsOCR(3, 10))
}

func TestResolverDisabled(t *testing.T) {
	cfg := domain.OCRConfig{Mode: "full", Disabled: true, Workers: 1}
	r := &Resolver{cfg: cfg}
	assert.False(t, r.needsOCR(0, 1))
}

func TestResolverSkipsAlreadyEmbeddedPages(t *testing.T) {
	engine := &fakeEngine{}
	cfg := domain.OCRConfig{Mode: "full", Workers: 2, DPI: 200, TimeoutSeconds: 5}
	r := NewResolver(engine, nil, cfg, logrus.New())

	pages := []*domain.Page{
		{PageNumber: 1, Text: "already here", TextSource: domain.TextEmbedded},
	}

	warnings := r.ResolveAll(context.Background(), domain.SourceDocument{DocumentID: "doc-1"}, pages)
	assert.Empty(t, warnings)
	assert.Equal(t, 0, engine.calls)
	assert.Equal(t, "already here", pages[0].Text)
}
