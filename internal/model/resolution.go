package model

type ResolutionPath string

const (
	PathExact      ResolutionPath = "exact"
	PathTiebreak   ResolutionPath = "deterministic-tiebreak"
	PathArbiter    ResolutionPath = "arbiter"
	PathUnresolved ResolutionPath = "unresolved"
)

// ReviewThreshold is the confidence below which a resolution is flagged for
// human review. Forced-low arbiter outcomes always land under it.
const ReviewThreshold = 0.5

// Resolution is the outcome of resolving one mention. Every mention yields
// exactly one, resolved or not. An empty ToDocumentID implies PathUnresolved.
type Resolution struct {
	Mention       CitationMention    `json:"mention"`
	Normalized    NormalizedCitation `json:"normalized"`
	ToDocumentID  string             `json:"to_document_id,omitempty"`
	NormalizedKey string             `json:"normalized_key"`
	Confidence    float64            `json:"confidence"`
	Path          ResolutionPath     `json:"resolution_path"`
	Notes         []string           `json:"notes"`
}

// NeedsReview reports whether the resolution falls under the human-review
// confidence gate.
func (r Resolution) NeedsReview() bool {
	return r.Confidence < ReviewThreshold
}

// Edge is the final graph unit, one per deduplicated mention that resolved
// to a target document.
type Edge struct {
	UUID           string         `json:"uuid"`
	FromDocumentID string         `json:"from_document_id"`
	ToDocumentID   string         `json:"to_document_id"`
	NormalizedKey  string         `json:"normalized_key"`
	Confidence     float64        `json:"confidence"`
	Path           ResolutionPath `json:"resolution_path"`
	Notes          []string       `json:"notes"`
}
