package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/caselink/internal/citation"
	"github.com/agenthands/caselink/internal/config"
	"github.com/agenthands/caselink/internal/model"
)

// State is a terminal state of the deterministic resolver.
type State string

const (
	StateResolved   State = "resolved"
	StateAmbiguous  State = "ambiguous"
	StateUnresolved State = "unresolved"
)

// Outcome is the resolver's verdict over a candidate set. Residual carries
// the surviving candidates when the state is Ambiguous, ordered
// deterministically with the strongest candidate first.
type Outcome struct {
	State    State
	Winner   *model.CandidateDocument
	Residual []model.CandidateDocument
	Path     model.ResolutionPath
	Notes    []string
}

type Resolver struct {
	cfg config.ResolverConfig
}

func New(cfg config.ResolverConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve runs the tie-break state machine over an already-located candidate
// set. Terminal states: Resolved, Ambiguous, Unresolved. Unresolved is
// final; only Ambiguous outcomes may be taken to the arbiter, and a single
// exact match with a plausible year never is.
func (r *Resolver) Resolve(n model.NormalizedCitation, candidates []model.CandidateDocument) Outcome {
	if len(candidates) == 0 {
		return Outcome{
			State: StateUnresolved,
			Path:  model.PathUnresolved,
			Notes: []string{"no candidates in corpus snapshot"},
		}
	}

	cands := make([]model.CandidateDocument, len(candidates))
	copy(cands, candidates)
	sort.Slice(cands, func(i, j int) bool { return cands[i].ID < cands[j].ID })

	if len(cands) == 1 {
		return r.resolveSingle(n, cands[0])
	}
	return r.tiebreak(n, cands)
}

func (r *Resolver) resolveSingle(n model.NormalizedCitation, cand model.CandidateDocument) Outcome {
	exact := isExactCore(n, cand)
	plausible := r.yearPlausible(n, cand)

	switch {
	case exact && plausible:
		return Outcome{
			State:  StateResolved,
			Winner: &cand,
			Path:   model.PathExact,
			Notes:  []string{"exact reporter/volume/page match"},
		}
	case !plausible:
		// A lone candidate contradicting the cited year is not a match the
		// rules can certify; surface it for arbitration.
		return Outcome{
			State:    StateAmbiguous,
			Residual: []model.CandidateDocument{cand},
			Notes:    []string{fmt.Sprintf("single candidate but year %d conflicts with cited %d", cand.Year, n.Year)},
		}
	default:
		return Outcome{
			State:  StateResolved,
			Winner: &cand,
			Path:   model.PathTiebreak,
			Notes:  []string{"single candidate on degraded field match"},
		}
	}
}

// tiebreak applies the ordered rules: year plausibility, court context, then
// case-name similarity with a margin requirement. A strict unique winner
// resolves; anything else stays ambiguous.
func (r *Resolver) tiebreak(n model.NormalizedCitation, cands []model.CandidateDocument) Outcome {
	var notes []string

	if n.Year != 0 {
		// An exact year match outranks the plausibility window: when exactly
		// one candidate carries the cited year, it wins outright.
		exact := filter(cands, func(c model.CandidateDocument) bool { return c.Year == n.Year })
		switch {
		case len(exact) == 1:
			return Outcome{
				State:  StateResolved,
				Winner: &exact[0],
				Path:   model.PathTiebreak,
				Notes:  []string{"year tie-break: unique candidate with the cited year"},
			}
		case len(exact) > 1:
			cands = exact
			notes = append(notes, fmt.Sprintf("%d candidates share the cited year", len(exact)))
		default:
			plausible := filter(cands, func(c model.CandidateDocument) bool { return r.yearPlausible(n, c) })
			if len(plausible) == 1 {
				return Outcome{
					State:  StateResolved,
					Winner: &plausible[0],
					Path:   model.PathTiebreak,
					Notes:  []string{"year-plausibility tie-break"},
				}
			}
			if len(plausible) > 1 {
				cands = plausible
				notes = append(notes, fmt.Sprintf("%d candidates within year window", len(plausible)))
			}
		}
	}

	if n.Court != "" {
		matching := filter(cands, func(c model.CandidateDocument) bool {
			return c.Court != "" && strings.EqualFold(c.Court, n.Court)
		})
		if len(matching) == 1 {
			return Outcome{
				State:  StateResolved,
				Winner: &matching[0],
				Path:   model.PathTiebreak,
				Notes:  append(notes, "court context tie-break"),
			}
		}
		if len(matching) > 1 {
			cands = matching
			notes = append(notes, "narrowed by court context")
		}
	}

	ordered := r.orderBySimilarity(n, cands)
	if n.CaseName != "" && len(ordered) > 1 {
		best := Similarity(n.CaseName, citation.NormalizeCaseName(ordered[0].Title))
		second := Similarity(n.CaseName, citation.NormalizeCaseName(ordered[1].Title))
		if best-second >= r.cfg.SimilarityThreshold {
			return Outcome{
				State:  StateResolved,
				Winner: &ordered[0],
				Path:   model.PathTiebreak,
				Notes: append(notes, fmt.Sprintf(
					"case-name similarity tie-break (trigram jaccard %.2f vs %.2f, margin %.2f)",
					best, second, r.cfg.SimilarityThreshold)),
			}
		}
		notes = append(notes, fmt.Sprintf(
			"case-name similarity inconclusive (trigram jaccard %.2f vs %.2f)", best, second))
	}

	return Outcome{
		State:    StateAmbiguous,
		Residual: ordered,
		Notes:    append(notes, fmt.Sprintf("%d candidates remain after deterministic tie-breaks", len(ordered))),
	}
}

// orderBySimilarity sorts candidates by case-name similarity descending,
// document ID ascending, giving the residual set a stable strongest-first
// order even when the margin was too thin to pick a winner.
func (r *Resolver) orderBySimilarity(n model.NormalizedCitation, cands []model.CandidateDocument) []model.CandidateDocument {
	ordered := make([]model.CandidateDocument, len(cands))
	copy(ordered, cands)
	if n.CaseName == "" {
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
		return ordered
	}

	sims := make(map[string]float64, len(ordered))
	for _, c := range ordered {
		sims[c.ID] = Similarity(n.CaseName, citation.NormalizeCaseName(c.Title))
	}
	sort.Slice(ordered, func(i, j int) bool {
		if sims[ordered[i].ID] != sims[ordered[j].ID] {
			return sims[ordered[i].ID] > sims[ordered[j].ID]
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

// yearPlausible reports whether the candidate's year is compatible with the
// citation's: absent on either side, equal, or within the configured window
// (decision vs publication year drift).
func (r *Resolver) yearPlausible(n model.NormalizedCitation, cand model.CandidateDocument) bool {
	if n.Year == 0 || cand.Year == 0 {
		return true
	}
	return withinWindow(n.Year, cand.Year, r.cfg.YearWindow)
}

func isExactCore(n model.NormalizedCitation, cand model.CandidateDocument) bool {
	return n.Reporter != "" && n.Volume != 0 && n.Page != 0 &&
		cand.Reporter == n.Reporter && cand.Volume == n.Volume && cand.Page == n.Page
}

func filter(cands []model.CandidateDocument, keep func(model.CandidateDocument) bool) []model.CandidateDocument {
	var out []model.CandidateDocument
	for _, c := range cands {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
