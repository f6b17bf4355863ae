// Package contract embeds the service's OpenAPI document and validates
// partner configuration payloads against its schemas.
package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aimehq/aime/internal/domain/types"
)

// OpenAPI contains the embedded OpenAPI YAML document.
//
//go:embed openapi.yaml
var OpenAPI []byte

// Schema names used by the loaders.
const (
	PartnerConfigSchema = "PartnerConfig"
)

// Error constants.
var (
	ErrSchemaViolation = types.Tag(types.ErrValidation, "schema violation")
	ErrMalformed       = types.Tag(types.ErrParse, "malformed document")
	ErrUnknownSchema   = errors.New("unknown schema")
)

var (
	loadOnce sync.Once
	doc      *openapi3.T
	docErr   error
)

// Document parses and validates the embedded OpenAPI document once.
func Document() (*openapi3.T, error) {
	loadOnce.Do(func() {
		loader := openapi3.NewLoader()
		d, err := loader.LoadFromData(OpenAPI)
		if err != nil {
			docErr = fmt.Errorf("load openapi document: %w", err)
			return
		}
		if err := d.Validate(context.Background()); err != nil {
			docErr = fmt.Errorf("openapi document invalid: %w", err)
			return
		}
		doc = d
	})
	return doc, docErr
}

// Schema returns a named component schema.
func Schema(name string) (*openapi3.Schema, error) {
	d, err := Document()
	if err != nil {
		return nil, err
	}
	if d.Components == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	ref, ok := d.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	return ref.Value, nil
}

// Validate checks a decoded JSON value (maps, slices, float64, string,
// bool, nil) against the named schema. All violations are reported.
func Validate(name string, value any) error {
	s, err := Schema(name)
	if err != nil {
		return err
	}
	if err := s.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}
	return nil
}

// ValidatePartnerConfig checks raw JSON against the PartnerConfig schema.
func ValidatePartnerConfig(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return Validate(PartnerConfigSchema, v)
}
