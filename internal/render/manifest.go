package render

import (
	"fmt"

	"github.com/citeline/chronology-core/internal/domain"
)

// BuildManifest constructs the §6 render_manifest.json contract: the named
// anchors the timeline and appendix sections expose, plus the forward/back
// link pairs connecting a timeline row to its appendix citations.
func BuildManifest(projection []domain.ChronologyProjectionEntry, graph *domain.EvidenceGraph) domain.RenderManifest {
	manifest := domain.RenderManifest{
		ForwardLinks: make(map[string][]string),
		BackLinks:    make(map[string][]string),
	}

	for _, e := range projection {
		chronAnchor := fmt.Sprintf("chron-%s", e.EventID)
		manifest.ChronAnchors = append(manifest.ChronAnchors, chronAnchor)
	}

	for _, letter := range appendixLetters {
		manifest.AppendixAnchors = append(manifest.AppendixAnchors, fmt.Sprintf("appendix-%s", letter))
	}

	if graph != nil {
		for _, e := range graph.Events {
			chronAnchor := fmt.Sprintf("chron-%s", e.EventID)
			for _, citationID := range e.CitationIDs {
				appendixAnchor := fmt.Sprintf("citation-%s", citationID)
				manifest.ForwardLinks[chronAnchor] = append(manifest.ForwardLinks[chronAnchor], appendixAnchor)
				manifest.BackLinks[appendixAnchor] = append(manifest.BackLinks[appendixAnchor], chronAnchor)
			}
		}
	}

	return manifest
}
