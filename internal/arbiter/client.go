// Package arbiter holds the one boundary where untrusted structured input
// enters the system: the external tie-breaking model. The gateway builds a
// strict request, validates the reply field by field, and folds a verdict
// into the resolution — or reports a contract violation, never a guess.
package arbiter

import (
	"context"
)

// Client generates a completion for a prompt. All providers reduce to this.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
