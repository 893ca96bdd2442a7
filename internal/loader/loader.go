// Package loader decodes metrics model files into core.Model values.
//
// It performs syntactic decoding only: unknown fields and malformed scalars
// are rejected here, while cross-references (undefined dimensions, a missing
// primary time dimension) are left to core.NewCatalog and the validator.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"gopkg.in/yaml.v3"
)

// ParseError represents an error decoding a model file.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		if e.Line > 0 {
			return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// linePattern matches the "line N: " prefix yaml.v3 puts on decode errors.
var linePattern = regexp.MustCompile(`^(?:yaml: )?line (\d+): (.*)$`)

// Parse decodes a model document. Unknown fields cause parse errors.
func Parse(data []byte) (*core.Model, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var model core.Model
	if err := dec.Decode(&model); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Message: "model file is empty"}
		}
		return nil, toParseError(err)
	}
	return &model, nil
}

// LoadFile reads and decodes the model file at path.
func LoadFile(path string) (*core.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	model, err := Parse(data)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.File = path
		}
		return nil, err
	}
	return model, nil
}

func toParseError(err error) *ParseError {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		pe := parseLine(typeErr.Errors[0])
		if len(typeErr.Errors) > 1 {
			pe.Message += fmt.Sprintf(" (and %d more)", len(typeErr.Errors)-1)
		}
		return pe
	}
	return parseLine(err.Error())
}

func parseLine(msg string) *ParseError {
	msg = strings.TrimSpace(msg)
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return &ParseError{Line: line, Message: m[2]}
	}
	return &ParseError{Message: strings.TrimPrefix(msg, "yaml: ")}
}
