package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/custodia-labs/extrakt/internal/core/domain"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("schema.json", strings.NewReader(string(schemaJSON))); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("schema.json")
	})
	return schema, schemaErr
}

// ParseJSON validates and decodes an extraction configuration supplied
// as JSON, e.g. over the CLI or the MCP surface. Unknown keys are
// rejected so typos fail loudly instead of silently changing behaviour.
func ParseJSON(data []byte) (*domain.ExtractionConfig, error) {
	s, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("malformed configuration json: %w: %v", domain.ErrInvalidInput, err)
	}
	if err := s.Validate(v); err != nil {
		return nil, fmt.Errorf("configuration does not match schema: %w: %v", domain.ErrInvalidInput, err)
	}

	cfg := domain.DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}
