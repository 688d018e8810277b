package resolver

import (
	"strings"

	"github.com/agenthands/caselink/internal/model"
)

// ScoreInput bundles what the scorer may consider for one resolution.
// ArbiterConfidence below zero means no arbiter was involved.
type ScoreInput struct {
	Normalized        model.NormalizedCitation
	Candidate         model.CandidateDocument
	ArbiterConfidence float64
	ArbiterAgrees     bool
}

// NoArbiter marks a purely deterministic resolution for ScoreInput.
const NoArbiter = -1.0

// Score computes a confidence in [0,1]. The base is the fraction of the
// three core fields present and exactly matched on both sides; each field
// missing or contradicted on either side compounds a multiplicative penalty,
// so joint uncertainty costs more than twice a single gap. Year and court
// matches add small fixed bonuses, as does arbiter agreement with the top
// deterministic candidate. Partial and arbiter-assisted scores are capped
// below the exact-match tier, so no bonus or arbiter opinion can dress a
// partial match up as an exact one.
func (r *Resolver) Score(in ScoreInput) float64 {
	matched, gaps := coreFieldTally(in.Normalized, in.Candidate)

	score := float64(matched) / 3.0
	for i := 0; i < gaps; i++ {
		score *= r.cfg.MissingFieldFactor
	}

	if in.Normalized.Year != 0 && in.Candidate.Year != 0 && in.Normalized.Year == in.Candidate.Year {
		score += r.cfg.YearBonus
	}
	if in.Normalized.Court != "" && in.Candidate.Court != "" &&
		strings.EqualFold(in.Normalized.Court, in.Candidate.Court) {
		score += r.cfg.CourtBonus
	}

	arbiterAssisted := in.ArbiterConfidence >= 0
	if arbiterAssisted {
		// Blend with the arbiter's stated confidence; the field-level
		// assessment always keeps half the weight.
		score = (score + clamp01(in.ArbiterConfidence)) / 2
		if in.ArbiterAgrees {
			score += r.cfg.AgreementBonus
		}
	}

	if matched < 3 || arbiterAssisted {
		if score > r.cfg.PartialCeiling {
			score = r.cfg.PartialCeiling
		}
	}
	return clamp01(score)
}

// coreFieldTally counts exactly-matched core fields and gaps (missing or
// contradicted on either side) across reporter, volume and page.
func coreFieldTally(n model.NormalizedCitation, cand model.CandidateDocument) (matched, gaps int) {
	if n.Reporter != "" && cand.Reporter != "" && n.Reporter == cand.Reporter {
		matched++
	} else {
		gaps++
	}
	if n.Volume != 0 && cand.Volume != 0 && n.Volume == cand.Volume {
		matched++
	} else {
		gaps++
	}
	if n.Page != 0 && cand.Page != 0 && n.Page == cand.Page {
		matched++
	} else {
		gaps++
	}
	return matched, gaps
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
