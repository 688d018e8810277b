// Package pipeline sequences the resolution stages per document and emits
// citation edges: normalize → locate → deterministic resolve → arbiter on
// residual ambiguity → score → dedupe → persist and record.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/caselink/internal/arbiter"
	"github.com/agenthands/caselink/internal/citation"
	"github.com/agenthands/caselink/internal/corpus"
	"github.com/agenthands/caselink/internal/dedupe"
	"github.com/agenthands/caselink/internal/graph"
	"github.com/agenthands/caselink/internal/model"
	"github.com/agenthands/caselink/internal/resolver"
)

// Confidence recorded when arbitration fails or is unavailable for an
// ambiguous mention. Below the review threshold: the outcome surfaces for
// human review instead of manufacturing an edge.
const arbiterFailureConfidence = 0.25

type Pipeline struct {
	Store    *corpus.Store
	Resolver *resolver.Resolver
	Gateway  *arbiter.Gateway // nil when no arbiter is configured
	Recorder *graph.Recorder  // nil when no graph store is configured
	Workers  int
	log      *zap.Logger
}

func New(store *corpus.Store, res *resolver.Resolver, gw *arbiter.Gateway, rec *graph.Recorder, workers int, log *zap.Logger) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		Store:    store,
		Resolver: res,
		Gateway:  gw,
		Recorder: rec,
		Workers:  workers,
		log:      log.With(zap.String("component", "pipeline")),
	}
}

// DocumentResult summarizes one document's resolution pass.
type DocumentResult struct {
	DocumentID  string `json:"document_id"`
	Mentions    int    `json:"mentions"`
	Edges       int    `json:"edges"`
	Unresolved  int    `json:"unresolved"`
	NeedsReview int    `json:"needs_review"`
	Status      string `json:"processing_status"`
	Error       string `json:"error,omitempty"`
}

// ProcessDocument resolves all stored mentions of one document against a
// corpus snapshot taken at the start of the pass. The pass lands atomically:
// on any persistence failure nothing is recorded and the document can be
// re-run from scratch.
func (p *Pipeline) ProcessDocument(ctx context.Context, docID string) (DocumentResult, error) {
	result := DocumentResult{DocumentID: docID, Status: "completed"}

	doc, err := p.Store.Document(docID)
	if err != nil {
		return result, fmt.Errorf("document not found: %w", err)
	}

	mentions, err := p.Store.MentionsFor(docID)
	if err != nil {
		return result, fmt.Errorf("failed to load mentions: %w", err)
	}
	result.Mentions = len(mentions)

	snap, err := p.Store.Snapshot()
	if err != nil {
		return result, fmt.Errorf("failed to snapshot corpus: %w", err)
	}

	resolutions := make([]model.Resolution, 0, len(mentions))
	for _, m := range mentions {
		resolutions = append(resolutions, p.resolveMention(ctx, snap, m))
	}

	kept, superseded := dedupe.Collapse(resolutions)

	var edges []model.Edge
	for _, res := range kept {
		if res.ToDocumentID == "" {
			result.Unresolved++
			continue
		}
		if res.NeedsReview() {
			result.NeedsReview++
		}
		edges = append(edges, model.Edge{
			UUID:           uuid.New().String(),
			FromDocumentID: docID,
			ToDocumentID:   res.ToDocumentID,
			NormalizedKey:  res.NormalizedKey,
			Confidence:     res.Confidence,
			Path:           res.Path,
			Notes:          res.Notes,
		})
	}
	result.Edges = len(edges)

	if err := p.Store.ReplaceResolutions(docID, append(kept, superseded...)); err != nil {
		return result, fmt.Errorf("failed to persist resolutions: %w", err)
	}

	p.record(ctx, doc, snap, edges)

	p.log.Info("document resolution completed",
		zap.String("document_id", docID),
		zap.Int("mentions", result.Mentions),
		zap.Int("edges", result.Edges),
		zap.Int("unresolved", result.Unresolved),
		zap.Int("needs_review", result.NeedsReview))

	return result, nil
}

// ProcessAll resolves every unprocessed document. Documents are independent
// units of work and run in parallel; one document's failure never aborts the
// others.
func (p *Pipeline) ProcessAll(ctx context.Context) ([]DocumentResult, error) {
	docs, err := p.Store.Unprocessed()
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed documents: %w", err)
	}

	results := make([]DocumentResult, len(docs))
	g := new(errgroup.Group)
	g.SetLimit(p.Workers)

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			res, err := p.ProcessDocument(ctx, doc.ID)
			if err != nil {
				p.log.Error("document resolution failed",
					zap.String("document_id", doc.ID), zap.Error(err))
				res.Status = "failed"
				res.Error = err.Error()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// resolveMention is the atomic unit of work: one mention in, exactly one
// resolution out, resolved or not.
func (p *Pipeline) resolveMention(ctx context.Context, snap *corpus.Snapshot, m model.CitationMention) model.Resolution {
	n := citation.Normalize(m)
	res := model.Resolution{
		Mention:       m,
		Normalized:    n,
		NormalizedKey: n.Key,
		Path:          model.PathUnresolved,
	}

	candidates := p.Resolver.Locate(n, m.SourceDocumentID, snap)
	outcome := p.Resolver.Resolve(n, candidates)
	res.Notes = append(res.Notes, outcome.Notes...)

	switch outcome.State {
	case resolver.StateResolved:
		res.ToDocumentID = outcome.Winner.ID
		res.Path = outcome.Path
		res.Confidence = p.Resolver.Score(resolver.ScoreInput{
			Normalized:        n,
			Candidate:         *outcome.Winner,
			ArbiterConfidence: resolver.NoArbiter,
		})

	case resolver.StateAmbiguous:
		p.arbitrate(ctx, n, m, outcome, &res)

	case resolver.StateUnresolved:
		// Nothing to do: an unresolved outcome is final and auditable as-is.
	}

	return res
}

// arbitrate hands the residual candidate set to the arbiter gateway and
// folds a validated decision into the resolution. Violations, transport
// failures, and declines all leave the mention unresolved at low confidence;
// nothing here is retried.
func (p *Pipeline) arbitrate(ctx context.Context, n model.NormalizedCitation, m model.CitationMention, outcome resolver.Outcome, res *model.Resolution) {
	if p.Gateway == nil {
		res.Confidence = arbiterFailureConfidence
		res.Notes = append(res.Notes, "ambiguous: no arbiter configured, flagged for review")
		return
	}

	decision, err := p.Gateway.Decide(ctx, model.ArbiterRequest{
		RawCitation: m.RawText,
		Normalized:  n,
		Candidates:  outcome.Residual,
	})
	if err != nil {
		res.Confidence = arbiterFailureConfidence
		switch {
		case errors.Is(err, arbiter.ErrTransport):
			res.Notes = append(res.Notes, "arbiter transport failure, flagged for review")
		default:
			res.Notes = append(res.Notes, "arbiter contract violation, flagged for review")
		}
		return
	}

	if decision.ChosenID == "" {
		res.Confidence = decision.Confidence
		if res.Confidence >= model.ReviewThreshold {
			res.Confidence = arbiterFailureConfidence
		}
		res.Notes = append(res.Notes, "arbiter declined to choose")
		res.Notes = append(res.Notes, decision.Notes...)
		return
	}

	// Membership was validated by the gateway; the residual set is small.
	var chosen model.CandidateDocument
	for _, c := range outcome.Residual {
		if c.ID == decision.ChosenID {
			chosen = c
			break
		}
	}

	res.ToDocumentID = chosen.ID
	res.Path = model.PathArbiter
	res.Confidence = p.Resolver.Score(resolver.ScoreInput{
		Normalized:        n,
		Candidate:         chosen,
		ArbiterConfidence: decision.Confidence,
		ArbiterAgrees:     decision.ChosenID == outcome.Residual[0].ID,
	})
	res.Notes = append(res.Notes, "resolved by arbiter")
	res.Notes = append(res.Notes, decision.Notes...)
}

// record mirrors the pass into the graph store. The corpus store is the
// source of truth; graph write failures are logged for alerting but do not
// fail the pass.
func (p *Pipeline) record(ctx context.Context, doc corpus.Document, snap *corpus.Snapshot, edges []model.Edge) {
	if p.Recorder == nil {
		return
	}

	source := model.CandidateDocument{
		ID: doc.ID, Title: doc.Title, Reporter: doc.Reporter,
		Volume: doc.Volume, Page: doc.Page, Year: doc.Year, Court: doc.Court,
	}
	if err := p.Recorder.SyncDocument(ctx, source); err != nil {
		p.log.Warn("failed to sync document node", zap.String("document_id", doc.ID), zap.Error(err))
		return
	}
	for _, e := range edges {
		if target, ok := snap.ByID(e.ToDocumentID); ok {
			if err := p.Recorder.SyncDocument(ctx, target); err != nil {
				p.log.Warn("failed to sync target node", zap.String("document_id", target.ID), zap.Error(err))
			}
		}
	}
	if err := p.Recorder.ReplaceEdges(ctx, doc.ID, edges); err != nil {
		p.log.Warn("failed to record edges", zap.String("document_id", doc.ID), zap.Error(err))
	}
}
