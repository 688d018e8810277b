package model

// CitationMention is a single extracted citation span, as supplied by the
// mention-parsing collaborator. Structured fields are optional: a zero value
// means the parser had no opinion. Mentions are never mutated after intake.
type CitationMention struct {
	RawText          string `json:"raw_text"`
	Reporter         string `json:"reporter,omitempty"`
	Volume           int    `json:"volume,omitempty"`
	Page             int    `json:"page,omitempty"`
	Year             int    `json:"year,omitempty"`
	CaseName         string `json:"case_name,omitempty"`
	Court            string `json:"court,omitempty"`
	SourceDocumentID string `json:"source_document_id"`
	PageNumber       int    `json:"page_number"`
	SpanStart        int    `json:"span_start"`
	SpanEnd          int    `json:"span_end"`
}

// SpanLength is the width of the extracted span, falling back to the raw
// text length when offsets were not supplied.
func (m CitationMention) SpanLength() int {
	if m.SpanEnd > m.SpanStart {
		return m.SpanEnd - m.SpanStart
	}
	return len(m.RawText)
}

// NormalizedCitation is the canonical form of a mention. Building it is a
// pure function of the mention's fields: the same input always yields the
// same normalized fields and the same Key.
type NormalizedCitation struct {
	Reporter string `json:"reporter,omitempty"`
	Volume   int    `json:"volume,omitempty"`
	Page     int    `json:"page,omitempty"`
	Year     int    `json:"year,omitempty"`
	CaseName string `json:"case_name,omitempty"` // lower-cased, punctuation-stripped
	Court    string `json:"court,omitempty"`
	Key      string `json:"key"`
}

// CandidateDocument is a document already known to the corpus, carrying the
// identifying metadata recorded at ingestion. Candidates are looked up by
// the resolution pipeline, never mutated by it.
type CandidateDocument struct {
	ID       string `json:"document_id"`
	Title    string `json:"title"`
	Reporter string `json:"reporter,omitempty"`
	Volume   int    `json:"volume,omitempty"`
	Page     int    `json:"page,omitempty"`
	Year     int    `json:"year,omitempty"`
	Court    string `json:"court,omitempty"`
}
