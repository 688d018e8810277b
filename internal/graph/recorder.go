package graph

import (
	"context"
	"time"

	"github.com/agenthands/caselink/internal/citation"
	"github.com/agenthands/caselink/internal/model"
)

// Recorder mirrors corpus documents and finalized edges into the graph
// store. It is a write-through sink: the corpus store stays the source of
// truth for audit records.
type Recorder struct {
	Driver GraphDriver
}

func NewRecorder(driver GraphDriver) *Recorder {
	return &Recorder{Driver: driver}
}

func (r *Recorder) SyncDocument(ctx context.Context, doc model.CandidateDocument) error {
	key := citation.Key(model.NormalizedCitation{
		Reporter: doc.Reporter,
		Volume:   doc.Volume,
		Page:     doc.Page,
		Year:     doc.Year,
	})
	params := map[string]interface{}{
		"id":             doc.ID,
		"title":          doc.Title,
		"reporter":       doc.Reporter,
		"volume":         doc.Volume,
		"page":           doc.Page,
		"year":           doc.Year,
		"court":          doc.Court,
		"normalized_key": key,
	}
	_, err := r.Driver.ExecuteQuery(ctx, SaveDocumentNodeQuery, params)
	return err
}

// ReplaceEdges drops a document's outgoing CITES edges and writes the new
// set, so a re-resolved document never leaves stale edges behind.
func (r *Recorder) ReplaceEdges(ctx context.Context, fromDocID string, edges []model.Edge) error {
	if _, err := r.Driver.ExecuteQuery(ctx, DeleteDocumentEdgesQuery, map[string]interface{}{
		"from_id": fromDocID,
	}); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range edges {
		params := map[string]interface{}{
			"uuid":            e.UUID,
			"from_id":         e.FromDocumentID,
			"to_id":           e.ToDocumentID,
			"normalized_key":  e.NormalizedKey,
			"confidence":      e.Confidence,
			"resolution_path": string(e.Path),
			"notes":           e.Notes,
			"created_at":      now,
		}
		if _, err := r.Driver.ExecuteQuery(ctx, SaveCitesEdgeQuery, params); err != nil {
			return err
		}
	}
	return nil
}
