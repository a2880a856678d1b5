// Package citation implements the component G citation post-processor:
// filling in a missing text_hash and flagging pages whose bounding box
// could not be resolved (§4.G).
package citation

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"

	"github.com/citeline/chronology-core/internal/domain"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalize collapses whitespace and lowercases a snippet before hashing, so
// citations that differ only in incidental OCR whitespace still hash equal.
func normalize(snippet string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(snippet)), " ")
}

// TextHash computes the stable content hash for a snippet.
func TextHash(snippet string) string {
	sum := sha256.Sum256([]byte(normalize(snippet)))
	return fmt.Sprintf("%x", sum)
}

// Process fills in TextHash where missing and returns a BBOX_FALLBACK
// warning for every citation whose bounding box never resolved, leaving the
// citation itself unchanged otherwise.
func Process(citations []domain.Citation) ([]domain.Citation, []domain.Warning) {
	out := make([]domain.Citation, len(citations))
	var warnings []domain.Warning

	for i, c := range citations {
		if c.TextHash == "" {
			c.TextHash = TextHash(c.Snippet)
		}
		if c.BBox.IsZero() {
			page := c.PageNumber
			warnings = append(warnings, domain.Warning{
				Code:       domain.WarnBBoxFallback,
				Message:    fmt.Sprintf("citation %s: no bounding box resolved, falling back to page-level anchor", c.CitationID),
				Page:       &page,
				DocumentID: c.SourceDocumentID,
			})
		}
		out[i] = c
	}
	return out, warnings
}
