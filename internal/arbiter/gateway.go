package arbiter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/caselink/internal/config"
	"github.com/agenthands/caselink/internal/model"
)

// Sentinel errors for the two failure classes the pipeline treats alike for
// resolution but distinguishes in logs.
var (
	ErrContractViolation = errors.New("arbiter contract violation")
	ErrTransport         = errors.New("arbiter transport failure")
)

// Decision is a validated arbiter verdict. An empty ChosenID is an explicit
// "no confident choice".
type Decision struct {
	ChosenID   string
	Confidence float64
	Notes      []string
}

// Gateway mediates all traffic to the external arbiter. It is invoked only
// for ambiguous candidate sets and always sends the full residual set. The
// reply is validated before anything downstream may trust it: a broken or
// evasive reply yields an error, never a resolution.
type Gateway struct {
	client          Client
	timeout         time.Duration
	rejectThreshold float64
	log             *zap.Logger
}

func NewGateway(client Client, cfg config.ArbiterConfig, log *zap.Logger) *Gateway {
	return &Gateway{
		client:          client,
		timeout:         cfg.Timeout(),
		rejectThreshold: cfg.RejectThreshold,
		log:             log.With(zap.String("component", "arbiter_gateway")),
	}
}

const promptTemplate = `You are a legal citation resolution arbiter.
A citation could not be resolved deterministically. Pick the candidate
document it most plausibly references, or decline if none is convincing.

Request:
%s

Reply with ONLY a JSON object of this exact shape:
{
  "best_document_id": "<candidate document_id or null>",
  "normalized_key": "<restate the citation's normalized key>",
  "confidence": <number between 0 and 1>,
  "notes": ["<short rationale>", ...]
}
Rules: best_document_id must be one of the offered candidates or null.
If you decline (null), confidence must be low. If you choose, notes must
explain why. Do not output any other text.`

// Decide sends the ambiguous citation to the arbiter and validates the
// reply. Transport failures (including timeout) return ErrTransport;
// malformed or rule-breaking replies return ErrContractViolation. Neither is
// retried here: the caller records a low-confidence unresolved outcome.
func (g *Gateway) Decide(ctx context.Context, req model.ArbiterRequest) (*Decision, error) {
	payload, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode arbiter request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := g.client.Generate(ctx, fmt.Sprintf(promptTemplate, payload))
	if err != nil {
		g.log.Warn("arbiter transport failure",
			zap.String("normalized_key", req.Normalized.Key),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	decision, err := g.validate(req, response)
	if err != nil {
		g.log.Warn("arbiter contract violation",
			zap.String("normalized_key", req.Normalized.Key),
			zap.Error(err))
		return nil, err
	}
	return decision, nil
}

// validate enforces the strict reply contract. Each rule is a hard failure:
// required fields present, confidence in [0,1], any chosen id a member of
// the offered set, non-empty rationale on a choice, and low confidence on a
// decline. Additional fields are ignored.
func (g *Gateway) validate(req model.ArbiterRequest, response string) (*Decision, error) {
	reply, err := decodeReply(response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContractViolation, err)
	}

	if reply.Confidence == nil {
		return nil, fmt.Errorf("%w: confidence is null", ErrContractViolation)
	}
	confidence := *reply.Confidence
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %v outside [0,1]", ErrContractViolation, confidence)
	}

	if reply.BestDocumentID == nil {
		// High confidence must accompany a choice, low confidence a decline.
		if confidence >= g.rejectThreshold {
			return nil, fmt.Errorf("%w: declined with confidence %.2f at or above reject threshold %.2f",
				ErrContractViolation, confidence, g.rejectThreshold)
		}
		return &Decision{Confidence: confidence, Notes: reply.Notes}, nil
	}

	chosen := *reply.BestDocumentID
	offered := false
	for _, c := range req.Candidates {
		if c.ID == chosen {
			offered = true
			break
		}
	}
	if !offered {
		return nil, fmt.Errorf("%w: chose %q, which was not among the offered candidates",
			ErrContractViolation, chosen)
	}
	if len(reply.Notes) == 0 {
		return nil, fmt.Errorf("%w: choice without rationale notes", ErrContractViolation)
	}

	return &Decision{ChosenID: chosen, Confidence: confidence, Notes: reply.Notes}, nil
}
