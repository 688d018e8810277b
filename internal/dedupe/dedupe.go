// Package dedupe collapses repeated citation mentions of the same authority
// on the same page into a single canonical instance.
package dedupe

import (
	"fmt"
	"sort"

	"github.com/agenthands/caselink/internal/model"
)

type groupKey struct {
	sourceDocID string
	pageNumber  int
	key         string
}

// Collapse groups resolutions by (source document, page number, canonical
// key) and keeps the single best instance per group: highest confidence,
// then longer raw span (the more specific extraction), then earlier span
// offset for determinism. Discarded duplicates are counted in the survivor's
// notes rather than silently dropped, and returned as superseded so every
// mention still has an auditable record. Output order is stable: source
// document, page number, canonical key.
func Collapse(resolutions []model.Resolution) (kept, superseded []model.Resolution) {
	groups := make(map[groupKey][]model.Resolution)
	var order []groupKey

	for _, res := range resolutions {
		k := groupKey{
			sourceDocID: res.Mention.SourceDocumentID,
			pageNumber:  res.Mention.PageNumber,
			key:         res.NormalizedKey,
		}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], res)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].sourceDocID != order[j].sourceDocID {
			return order[i].sourceDocID < order[j].sourceDocID
		}
		if order[i].pageNumber != order[j].pageNumber {
			return order[i].pageNumber < order[j].pageNumber
		}
		return order[i].key < order[j].key
	})

	kept = make([]model.Resolution, 0, len(order))
	for _, k := range order {
		group := groups[k]
		bestIdx := pickBest(group)
		best := group[bestIdx]
		if discarded := len(group) - 1; discarded > 0 {
			best.Notes = append(best.Notes,
				fmt.Sprintf("deduplicated %d repeated mention(s) on page %d", discarded, k.pageNumber))
		}
		kept = append(kept, best)

		// Skip the kept instance by index: byte-identical duplicates must
		// still produce superseded records, one per discarded mention.
		for i, res := range group {
			if i == bestIdx {
				continue
			}
			res.Notes = append(res.Notes, "superseded by higher-quality duplicate on same page")
			superseded = append(superseded, res)
		}
	}
	return kept, superseded
}

func pickBest(group []model.Resolution) int {
	bestIdx := 0
	for i, res := range group[1:] {
		best := group[bestIdx]
		if res.Confidence != best.Confidence {
			if res.Confidence > best.Confidence {
				bestIdx = i + 1
			}
			continue
		}
		if res.Mention.SpanLength() != best.Mention.SpanLength() {
			if res.Mention.SpanLength() > best.Mention.SpanLength() {
				bestIdx = i + 1
			}
			continue
		}
		if res.Mention.SpanStart < best.Mention.SpanStart {
			bestIdx = i + 1
		}
	}
	return bestIdx
}
