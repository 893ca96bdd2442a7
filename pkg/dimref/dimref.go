// Package dimref parses dimension references used by materializations.
//
// A reference is either a bare dimension name ("ds") or a name qualified with
// a time granularity using the "__" separator ("ds__day"). Only a trailing
// token that names a known granularity is treated as a qualifier, so
// dimension names that themselves contain "__" stay intact.
//
// Parsing never consults the model: whether the named dimension exists is a
// question for validation rules.
package dimref

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

// Separator joins a dimension name and its granularity qualifier.
const Separator = "__"

// Reference is a parsed dimension reference.
type Reference struct {
	// Raw is the reference exactly as authored
	Raw string
	// Name is the base dimension name
	Name string
	// Granularity is the requested granularity; zero means unspecified
	Granularity core.TimeGranularity
}

// HasGranularity reports whether the reference carries an explicit qualifier.
func (r Reference) HasGranularity() bool {
	return !r.Granularity.IsZero()
}

// String returns the canonical form of the reference.
func (r Reference) String() string {
	if !r.HasGranularity() {
		return r.Name
	}
	return r.Name + Separator + r.Granularity.String()
}

// MalformedReferenceError reports a reference with invalid syntax.
type MalformedReferenceError struct {
	Ref    string
	Reason string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("malformed dimension reference %q: %s", e.Ref, e.Reason)
}

// Parse splits a dimension reference into base name and requested granularity.
// It fails only on structurally invalid syntax: empty references, surrounding
// whitespace, or an empty segment around a separator.
func Parse(ref string) (Reference, error) {
	if ref == "" {
		return Reference{}, &MalformedReferenceError{Ref: ref, Reason: "empty reference"}
	}
	if strings.TrimSpace(ref) != ref {
		return Reference{}, &MalformedReferenceError{Ref: ref, Reason: "leading or trailing whitespace"}
	}

	for _, segment := range strings.Split(ref, Separator) {
		if segment == "" {
			return Reference{}, &MalformedReferenceError{Ref: ref, Reason: "empty name segment"}
		}
	}

	idx := strings.LastIndex(ref, Separator)
	if idx < 0 {
		return Reference{Raw: ref, Name: ref}, nil
	}

	if g, ok := core.ParseTimeGranularity(ref[idx+len(Separator):]); ok {
		return Reference{Raw: ref, Name: ref[:idx], Granularity: g}, nil
	}

	// Not a granularity: the whole string is the dimension name.
	return Reference{Raw: ref, Name: ref}, nil
}

// ParseAll parses references in order, stopping at the first malformed one.
func ParseAll(refs []string) ([]Reference, error) {
	parsed := make([]Reference, 0, len(refs))
	for _, raw := range refs {
		r, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, r)
	}
	return parsed, nil
}
