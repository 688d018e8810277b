package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/caselink/internal/citation"
	"github.com/agenthands/caselink/internal/config"
	"github.com/agenthands/caselink/internal/corpus"
	"github.com/agenthands/caselink/internal/model"
)

func newTestResolver() *Resolver {
	return New(config.Default().Resolver)
}

func normalized(m model.CitationMention) model.NormalizedCitation {
	return citation.Normalize(m)
}

func TestSingleExactMatchResolvesWithoutArbiter(t *testing.T) {
	// Scenario: one candidate with identical reporter/volume/page/year.
	r := newTestResolver()
	n := normalized(model.CitationMention{Reporter: "Cal.", Volume: 123, Page: 456, Year: 1998})
	snap := corpus.NewSnapshot([]model.CandidateDocument{
		{ID: "doc-1", Title: "Smith v. Jones", Reporter: "Cal.", Volume: 123, Page: 456, Year: 1998},
	})

	cands := r.Locate(n, "source-doc", snap)
	require.Len(t, cands, 1)

	out := r.Resolve(n, cands)
	require.Equal(t, StateResolved, out.State)
	assert.Equal(t, model.PathExact, out.Path)
	assert.Equal(t, "doc-1", out.Winner.ID)

	score := r.Score(ScoreInput{Normalized: n, Candidate: *out.Winner, ArbiterConfidence: NoArbiter})
	assert.GreaterOrEqual(t, score, 0.9)
}

func TestYearPlausibilityTiebreak(t *testing.T) {
	// Scenario: two candidates differing only by year; the cited year picks
	// the plausible one deterministically, no arbiter involved.
	r := newTestResolver()
	n := normalized(model.CitationMention{Reporter: "Cal.", Volume: 123, Page: 456, Year: 1998})
	cands := []model.CandidateDocument{
		{ID: "doc-1998", Title: "Smith v. Jones", Reporter: "Cal.", Volume: 123, Page: 456, Year: 1998},
		{ID: "doc-2004", Title: "Smith v. Jones", Reporter: "Cal.", Volume: 123, Page: 456, Year: 2004},
	}

	out := r.Resolve(n, cands)
	require.Equal(t, StateResolved, out.State)
	assert.Equal(t, model.PathTiebreak, out.Path)
	assert.Equal(t, "doc-1998", out.Winner.ID)
}

func TestExactYearBeatsAdjacentYear(t *testing.T) {
	// Adjacent years both sit inside the plausibility window, but an exact
	// year match must still win deterministically without the arbiter.
	r := newTestResolver()
	n := normalized(model.CitationMention{Reporter: "Cal.", Volume: 123, Page: 456, Year: 1998})
	cands := []model.CandidateDocument{
		{ID: "doc-1998", Title: "Smith v. Jones", Reporter: "Cal.", Volume: 123, Page: 456, Year: 1998},
		{ID: "doc-1999", Title: "Smith v. Jones", Reporter: "Cal.", Volume: 123, Page: 456, Year: 1999},
	}

	out := r.Resolve(n, cands)
	require.Equal(t, StateResolved, out.State)
	assert.Equal(t, model.PathTiebreak, out.Path)
	assert.Equal(t, "doc-1998", out.Winner.ID)
}

func TestYearWindowFallbackWhenNoExactYear(t *testing.T) {
	// No candidate carries the cited year; the ±window plausibility test
	// still narrows the field (decision vs publication year drift).
	r := newTestResolver()
	n := normalized(model.CitationMention{Reporter: "Cal.", Volume: 123, Page: 456, Year: 1998})
	cands := []model.CandidateDocument{
		{ID: "doc-1999", Title: "Smith v. Jones", Reporter: "Cal.", Volume: 123, Page: 456, Year: 1999},
		{ID: "doc-2004", Title: "Smith v. Jones", Reporter: "Cal.", Volume: 123, Page: 456, Year: 2004},
	}

	out := r.Resolve(n, cands)
	require.Equal(t, StateResolved, out.State)
	assert.Equal(t, model.PathTiebreak, out.Path)
	assert.Equal(t, "doc-1999", out.Winner.ID)
}

func TestCourtContextTiebreak(t *testing.T) {
	r := newTestResolver()
	n := normalized(model.CitationMention{
		Reporter: "F.2d", Volume: 10, Page: 20, Court: "9th Cir.",
	})
	cands := []model.CandidateDocument{
		{ID: "doc-a", Title: "A v. B", Reporter: "F.2d", Volume: 10, Page: 20, Court: "2d Cir."},
		{ID: "doc-b", Title: "A v. B", Reporter: "F.2d", Volume: 10, Page: 20, Court: "9th Cir."},
	}

	out := r.Resolve(n, cands)
	require.Equal(t, StateResolved, out.State)
	assert.Equal(t, model.PathTiebreak, out.Path)
	assert.Equal(t, "doc-b", out.Winner.ID)
}

func TestCaseNameSimilarityTiebreak(t *testing.T) {
	r := newTestResolver()
	n := normalized(model.CitationMention{
		Reporter: "Cal.", Volume: 123, Page: 456, CaseName: "Rodriguez v. Pacific Gas",
	})
	cands := []model.CandidateDocument{
		{ID: "doc-a", Title: "Rodriguez v. Pacific Gas & Electric Co.", Reporter: "Cal.", Volume: 123, Page: 456},
		{ID: "doc-b", Title: "Henderson v. Munro", Reporter: "Cal.", Volume: 123, Page: 456},
	}

	out := r.Resolve(n, cands)
	require.Equal(t, StateResolved, out.State)
	assert.Equal(t, model.PathTiebreak, out.Path)
	assert.Equal(t, "doc-a", out.Winner.ID)
}

func TestIdenticalCandidatesAreAmbiguous(t *testing.T) {
	// Identical fields and no usable tie-break signal: the state machine
	// must hand the full residual set onward, not guess.
	r := newTestResolver()
	n := normalized(model.CitationMention{Reporter: "Cal.", Volume: 123, Page: 456, Year: 1998})
	cands := []model.CandidateDocument{
		{ID: "doc-a", Title: "Smith v. Jones", Reporter: "Cal.", Volume: 123, Page: 456, Year: 1998},
		{ID: "doc-b", Title: "Smyth v. Johns", Reporter: "Cal.", Volume: 123, Page: 456, Year: 1998},
	}

	out := r.Resolve(n, cands)
	require.Equal(t, StateAmbiguous, out.State)
	assert.Len(t, out.Residual, 2)
}

func TestResolverIsDeterministicUnderCandidateOrder(t *testing.T) {
	r := newTestResolver()
	n := normalized(model.CitationMention{
		Reporter: "Cal.", Volume: 123, Page: 456, Year: 1998, CaseName: "Smith v. Jones",
	})
	forward := []model.CandidateDocument{
		{ID: "doc-a", Title: "Smith v. Jones", Reporter: "Cal.", Volume: 123, Page: 456, Year: 1998},
		{ID: "doc-b", Title: "Wholly Unrelated Title", Reporter: "Cal.", Volume: 123, Page: 456, Year: 1998},
	}
	reversed := []model.CandidateDocument{forward[1], forward[0]}

	first := r.Resolve(n, forward)
	second := r.Resolve(n, reversed)

	require.Equal(t, first.State, second.State)
	require.Equal(t, StateResolved, first.State)
	assert.Equal(t, first.Winner.ID, second.Winner.ID)
	assert.Equal(t, first.Path, second.Path)
}

func TestZeroCandidatesIsUnresolved(t *testing.T) {
	r := newTestResolver()
	n := normalized(model.CitationMention{Reporter: "Cal.", Volume: 123, Page: 456})

	out := r.Resolve(n, nil)
	assert.Equal(t, StateUnresolved, out.State)
	assert.Equal(t, model.PathUnresolved, out.Path)
}

func TestLocateMissingPageIsNotAWildcard(t *testing.T) {
	// Scenario: a mention missing its page must not match a candidate on
	// reporter/volume alone when the remaining fields disagree.
	r := newTestResolver()
	n := normalized(model.CitationMention{Reporter: "Cal.", Volume: 123, Year: 1998})
	snap := corpus.NewSnapshot([]model.CandidateDocument{
		{ID: "doc-1", Title: "Smith v. Jones", Reporter: "Cal.", Volume: 999, Page: 456, Year: 1998},
		{ID: "doc-2", Title: "Other v. Case", Reporter: "N.E.2d", Volume: 123, Page: 456, Year: 1998},
	})

	cands := r.Locate(n, "source-doc", snap)
	assert.Empty(t, cands)

	out := r.Resolve(n, cands)
	assert.Equal(t, StateUnresolved, out.State)
}

func TestLocateDegradedMatchUsesYearAsFilter(t *testing.T) {
	r := newTestResolver()
	n := normalized(model.CitationMention{Reporter: "Cal.", Volume: 123, Year: 1998})
	snap := corpus.NewSnapshot([]model.CandidateDocument{
		{ID: "doc-match", Title: "Smith v. Jones", Reporter: "Cal.", Volume: 123, Page: 456, Year: 1998},
		{ID: "doc-wrong-year", Title: "Old v. Case", Reporter: "Cal.", Volume: 123, Page: 9, Year: 1950},
	})

	cands := r.Locate(n, "source-doc", snap)
	require.Len(t, cands, 1)
	assert.Equal(t, "doc-match", cands[0].ID)
}

func TestLocateRequiresMinimumSignal(t *testing.T) {
	// One present core field is too little to match on; the locator returns
	// nothing rather than scanning the corpus wide open.
	r := newTestResolver()
	n := normalized(model.CitationMention{Reporter: "Cal."})
	snap := corpus.NewSnapshot([]model.CandidateDocument{
		{ID: "doc-1", Title: "Smith v. Jones", Reporter: "Cal.", Volume: 123, Page: 456},
	})

	assert.Empty(t, r.Locate(n, "source-doc", snap))
}

func TestLocateExcludesSourceDocument(t *testing.T) {
	r := newTestResolver()
	n := normalized(model.CitationMention{Reporter: "Cal.", Volume: 123, Page: 456})
	snap := corpus.NewSnapshot([]model.CandidateDocument{
		{ID: "self", Title: "Self Citing Opinion", Reporter: "Cal.", Volume: 123, Page: 456},
	})

	assert.Empty(t, r.Locate(n, "self", snap))
}
