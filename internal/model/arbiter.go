package model

// ArbiterRequest is the compact request sent to the external arbiter for an
// ambiguous candidate set. It always carries the full residual set, never a
// single pre-selected guess.
type ArbiterRequest struct {
	RawCitation string              `json:"raw_citation"`
	Normalized  NormalizedCitation  `json:"normalized"`
	Candidates  []CandidateDocument `json:"candidates"`
}

// ArbiterReply is the strict response contract. Pointer fields distinguish
// "absent" from zero values: a missing confidence is a contract violation,
// while a null best_document_id is an explicit "no confident choice".
type ArbiterReply struct {
	BestDocumentID *string  `json:"best_document_id"`
	NormalizedKey  string   `json:"normalized_key"`
	Confidence     *float64 `json:"confidence"`
	Notes          []string `json:"notes"`
}
