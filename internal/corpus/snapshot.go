package corpus

import "github.com/agenthands/caselink/internal/model"

// Snapshot is an immutable view of the candidate corpus taken at the start
// of a resolution pass. New documents ingested mid-pass are invisible to it,
// so a single document's resolution never sees a half-ingested competitor.
type Snapshot struct {
	docs []model.CandidateDocument
	byID map[string]model.CandidateDocument
}

// Snapshot copies the current corpus into an in-memory view ordered by
// document ID.
func (s *Store) Snapshot() (*Snapshot, error) {
	var rows []Document
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	snap := &Snapshot{
		docs: make([]model.CandidateDocument, 0, len(rows)),
		byID: make(map[string]model.CandidateDocument, len(rows)),
	}
	for _, d := range rows {
		cand := model.CandidateDocument{
			ID:       d.ID,
			Title:    d.Title,
			Reporter: d.Reporter,
			Volume:   d.Volume,
			Page:     d.Page,
			Year:     d.Year,
			Court:    d.Court,
		}
		snap.docs = append(snap.docs, cand)
		snap.byID[d.ID] = cand
	}
	return snap, nil
}

// NewSnapshot builds a snapshot directly from candidates, ordered as given.
// Intended for tests and for callers that already hold a corpus in memory.
func NewSnapshot(docs []model.CandidateDocument) *Snapshot {
	snap := &Snapshot{
		docs: make([]model.CandidateDocument, len(docs)),
		byID: make(map[string]model.CandidateDocument, len(docs)),
	}
	copy(snap.docs, docs)
	for _, d := range docs {
		snap.byID[d.ID] = d
	}
	return snap
}

// All returns the snapshot's candidates. Callers must not mutate the slice.
func (s *Snapshot) All() []model.CandidateDocument {
	return s.docs
}

func (s *Snapshot) ByID(id string) (model.CandidateDocument, bool) {
	d, ok := s.byID[id]
	return d, ok
}

func (s *Snapshot) Len() int {
	return len(s.docs)
}
