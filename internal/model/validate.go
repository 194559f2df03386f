package model

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed generate_request.schema.json
var generateRequestSchema []byte

var compiledGenerateRequestSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("generate_request.schema.json", bytes.NewReader(generateRequestSchema)); err != nil {
		return nil, fmt.Errorf("failed to load generate request schema: %w", err)
	}
	schema, err := compiler.Compile("generate_request.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile generate request schema: %w", err)
	}
	return schema, nil
})

// ValidateGenerateRequest checks a raw JSON request document against the
// generate request schema. Unknown fields, unknown models and wrongly typed
// parameters are rejected.
func ValidateGenerateRequest(data []byte) error {
	schema, err := compiledGenerateRequestSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode request JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("request does not match schema: %w", err)
	}
	return nil
}

// DecodeGenerateRequest validates data and decodes it into a GenerateRequest.
func DecodeGenerateRequest(data []byte) (GenerateRequest, error) {
	if err := ValidateGenerateRequest(data); err != nil {
		return GenerateRequest{}, err
	}
	var req GenerateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return GenerateRequest{}, fmt.Errorf("failed to decode request: %w", err)
	}
	return req, nil
}
