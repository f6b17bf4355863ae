package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aimehq/aime/internal/contract"
	"github.com/aimehq/aime/internal/domain/partner"
)

// Decode turns one JSON or YAML fixture into a validated, normalised config.
// The format is chosen by extension (".json", ".yaml", ".yml").
func Decode(ext string, data []byte) (partner.Config, error) {
	var raw any
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return partner.Config{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return partner.Config{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	default:
		return partner.Config{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	return DecodeValue(raw)
}

// DecodeValue validates a generic decoded document. It accepts partner_id
// as an alias for partnerId.
func DecodeValue(raw any) (partner.Config, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return partner.Config{}, fmt.Errorf("%w: top level must be an object", ErrMalformed)
	}
	if _, has := obj["partnerId"]; !has {
		if alias, ok := obj["partner_id"]; ok {
			obj["partnerId"] = alias
		}
	}
	delete(obj, "partner_id")
	switch v := obj["version"].(type) {
	case nil, string:
	case int, int64, float64:
		obj["version"] = fmt.Sprint(v)
	}

	// Round-trip through JSON so YAML ints and nested maps look exactly like
	// decoded JSON to the schema validator.
	canonical, err := json.Marshal(obj)
	if err != nil {
		return partner.Config{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if err := contract.ValidatePartnerConfig(canonical); err != nil {
		return partner.Config{}, err
	}

	var cfg partner.Config
	if err := json.Unmarshal(canonical, &cfg); err != nil {
		return partner.Config{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return partner.Config{}, err
	}
	return cfg, nil
}

// ImportResult describes a persisted partner config import.
type ImportResult struct {
	OK        bool       `json:"ok"`
	PartnerID string     `json:"partnerId"`
	Path      string     `json:"path"`
	Active    bool       `json:"active"`
	Report    LoadReport `json:"report"`
}

// PrepareImport validates an import payload the same way fixtures are
// validated and returns the config with the canonical document to persist.
// A payload without partnerId or partner_id is rejected before anything
// else is checked.
func PrepareImport(data []byte) (partner.Config, []byte, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return partner.Config{}, nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return partner.Config{}, nil, fmt.Errorf("%w: top level must be an object", ErrMalformed)
	}
	if importID(obj) == "" {
		return partner.Config{}, nil, ErrMissingPartnerID
	}
	cfg, err := DecodeValue(obj)
	if err != nil {
		return partner.Config{}, nil, err
	}
	canonical, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return partner.Config{}, nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return cfg, append(canonical, '\n'), nil
}

func importID(obj map[string]any) string {
	for _, key := range []string{"partnerId", "partner_id"} {
		if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
