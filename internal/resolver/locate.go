// Package resolver turns normalized citations into resolutions: candidate
// location, the deterministic tie-break state machine, and confidence
// scoring. Everything here is pure over a corpus snapshot — no external
// calls, no dependence on storage iteration order or wall-clock time.
package resolver

import (
	"sort"

	"github.com/agenthands/caselink/internal/corpus"
	"github.com/agenthands/caselink/internal/model"
)

// Locate returns the candidate documents whose own metadata could match the
// citation, ordered by match strength and then document ID. With all three
// core fields present, only exact (reporter, volume, page) matches qualify.
// With one core field absent, matching degrades to the remaining present
// fields, with year as a secondary filter. An absent field is never a
// wildcard: fewer than two present core fields yields no candidates at all
// rather than matching the whole corpus.
func (r *Resolver) Locate(n model.NormalizedCitation, sourceDocID string, snap *corpus.Snapshot) []model.CandidateDocument {
	present := corePresent(n)
	if present < 2 {
		return nil
	}

	type ranked struct {
		cand    model.CandidateDocument
		matched int
	}
	var out []ranked

	for _, cand := range snap.All() {
		if cand.ID == sourceDocID {
			continue
		}
		matched, ok := coreMatch(n, cand)
		if !ok {
			continue
		}
		// Year acts as a secondary filter only on degraded matches; an
		// exact three-field match survives to the state machine, which
		// owns year plausibility.
		if matched < 3 && n.Year != 0 && cand.Year != 0 && !withinWindow(n.Year, cand.Year, r.cfg.YearWindow) {
			continue
		}
		out = append(out, ranked{cand: cand, matched: matched})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].matched != out[j].matched {
			return out[i].matched > out[j].matched
		}
		return out[i].cand.ID < out[j].cand.ID
	})

	cands := make([]model.CandidateDocument, len(out))
	for i, r := range out {
		cands[i] = r.cand
	}
	return cands
}

// coreMatch reports how many core fields matched and whether the candidate
// qualifies: every core field present on the citation must be present and
// equal on the candidate.
func coreMatch(n model.NormalizedCitation, cand model.CandidateDocument) (int, bool) {
	matched := 0
	if n.Reporter != "" {
		if cand.Reporter != n.Reporter {
			return 0, false
		}
		matched++
	}
	if n.Volume != 0 {
		if cand.Volume != n.Volume {
			return 0, false
		}
		matched++
	}
	if n.Page != 0 {
		if cand.Page != n.Page {
			return 0, false
		}
		matched++
	}
	return matched, true
}

func corePresent(n model.NormalizedCitation) int {
	present := 0
	if n.Reporter != "" {
		present++
	}
	if n.Volume != 0 {
		present++
	}
	if n.Page != 0 {
		present++
	}
	return present
}

func withinWindow(a, b, window int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= window
}
