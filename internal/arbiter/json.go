package arbiter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/caselink/internal/model"
)

// replyFields are the keys the reply contract requires in every arbiter
// response, present even when null.
var replyFields = []string{"best_document_id", "normalized_key", "confidence", "notes"}

// decodeReply extracts the JSON object from a raw arbiter response and
// decodes it against the reply contract. Surrounding prose and markdown
// fences are tolerated; an absent required key is not, even where its zero
// value would decode cleanly, so a key-presence scan runs before the typed
// decode.
func decodeReply(response string) (model.ArbiterReply, error) {
	var zero model.ArbiterReply

	start := strings.IndexByte(response, '{')
	end := strings.LastIndexByte(response, '}')
	if start == -1 || end < start {
		return zero, errors.New("no JSON object in reply")
	}
	payload := []byte(response[start : end+1])

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return zero, fmt.Errorf("unparseable reply: %v", err)
	}
	for _, field := range replyFields {
		if _, ok := raw[field]; !ok {
			return zero, fmt.Errorf("missing required field %q", field)
		}
	}

	var reply model.ArbiterReply
	if err := json.Unmarshal(payload, &reply); err != nil {
		return zero, fmt.Errorf("malformed reply: %v", err)
	}
	return reply, nil
}
