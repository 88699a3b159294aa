package domain

import (
	"fmt"
	"strings"
)

// ColumnType is the expected primitive type of a CSV column.
type ColumnType string

const (
	ColumnInteger ColumnType = "integer"
	ColumnFloat   ColumnType = "float"
	ColumnString  ColumnType = "string"
)

// ParseColumnType accepts the canonical names and common aliases (int, str, number).
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer":
		return ColumnInteger, nil
	case "float", "number", "double":
		return ColumnFloat, nil
	case "str", "string":
		return ColumnString, nil
	default:
		return "", fmt.Errorf("unsupported column type %q (use integer, float or string)", s)
	}
}

// RuleKind names a simple per-column check.
type RuleKind string

const (
	RuleNonEmpty RuleKind = "nonempty"
	RuleMin      RuleKind = "min"
	RuleMax      RuleKind = "max"
)

// CSVRule is one per-column check from a CSV rule specification.
type CSVRule struct {
	Kind   RuleKind `yaml:"kind"   json:"kind"`
	Column string   `yaml:"column" json:"column"`
	Value  *float64 `yaml:"value"  json:"value,omitempty"`
}

// CSVSpec is the rule specification a CSV validator is constructed with.
type CSVSpec struct {
	RequiredColumns []string          `yaml:"required_columns" json:"required_columns"`
	Types           map[string]string `yaml:"types"            json:"types"`
	Rules           []CSVRule         `yaml:"rules"            json:"rules"`
}

// Validate rejects specs a CSV validator cannot be built from.
func (s CSVSpec) Validate() error {
	for col, t := range s.Types {
		if _, err := ParseColumnType(t); err != nil {
			return fmt.Errorf("types.%s: %w", col, err)
		}
	}
	for i, r := range s.Rules {
		if r.Column == "" {
			return fmt.Errorf("rules[%d]: column is required", i)
		}
		switch r.Kind {
		case RuleNonEmpty:
		case RuleMin, RuleMax:
			if r.Value == nil {
				return fmt.Errorf("rules[%d]: %s rule on %q needs a value", i, r.Kind, r.Column)
			}
		default:
			return fmt.Errorf("rules[%d]: unknown rule kind %q (use nonempty, min or max)", i, r.Kind)
		}
	}
	return nil
}
