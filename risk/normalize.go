package risk

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/m-mizutani/goerr/v2"
)

var ErrInvalidPayload = goerr.New("invalid risk payload")

// Payload is what the AI service (or a saved export request) carries.
type Payload struct {
	Description string
	Risks       []Risk
}

// Normalize converts a decoded JSON value into risks. Anything that is not
// an array yields no risks; entries that are not objects, or that lack a
// description or mitigation, are dropped; non-string fields count as absent.
func Normalize(value any) []Risk {
	items, ok := value.([]any)
	if !ok {
		return []Risk{}
	}
	out := make([]Risk, 0, len(items))
	for _, item := range items {
		candidate, ok := item.(map[string]any)
		if !ok {
			continue
		}
		r, err := New(
			stringField(candidate, "risk_description"),
			stringField(candidate, "probability"),
			stringField(candidate, "impact"),
			stringField(candidate, "mitigation_measure"),
		)
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// DecodePayload reads either {"description": ..., "risks": [...]} or a bare
// array of risks.
func DecodePayload(r io.Reader) (*Payload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "read risk payload")
	}
	var value any
	if err := json.Unmarshal(bytes.TrimSpace(data), &value); err != nil {
		return nil, goerr.Wrap(ErrInvalidPayload, "decode risk payload", goerr.V("error", err.Error()))
	}

	switch v := value.(type) {
	case []any:
		return &Payload{Risks: Normalize(v)}, nil
	case map[string]any:
		description, _ := v["description"].(string)
		return &Payload{Description: description, Risks: Normalize(v["risks"])}, nil
	default:
		return &Payload{Risks: []Risk{}}, nil
	}
}
