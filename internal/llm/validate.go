package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled holds one compiled schema per Schema.Name.
var compiled sync.Map

// ValidateResponse checks a structured reply against schema. A nil schema
// accepts anything. Failures are *ErrInvalidResponse so the retry policy
// treats them as a malformed reply.
func ValidateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	body := unfence(raw)

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("reply is not JSON: %w", err)}
	}
	sch, err := compile(schema)
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	if err := sch.Validate(doc); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("reply does not match %s: %w", schema.Name, err)}
	}
	return nil
}

// DecodeResponse validates a model reply against schema and unmarshals it
// into v. Replies wrapped in a Markdown code fence are accepted.
func DecodeResponse(schema *Schema, reply string, v any) error {
	raw := json.RawMessage(reply)
	if err := ValidateResponse(schema, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(unfence(raw), v); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("decode reply: %w", err)}
	}
	return nil
}

// unfence strips a ```json ... ``` wrapper some models put around JSON.
func unfence(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return []byte(s)
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}

func compile(schema *Schema) (*jsonschema.Schema, error) {
	if sch, ok := compiled.Load(schema.Name); ok {
		return sch.(*jsonschema.Schema), nil
	}

	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("encode schema %s: %w", schema.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", schema.Name, err)
	}

	c := jsonschema.NewCompiler()
	url := "mem://schemas/" + schema.Name + ".json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", schema.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", schema.Name, err)
	}
	compiled.Store(schema.Name, sch)
	return sch, nil
}
