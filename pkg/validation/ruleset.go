package validation

import (
	"fmt"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

// RuleSet is an ordered, immutable collection of rules.
// Rules run in the order they were passed to NewRuleSet.
type RuleSet struct {
	rules []RuleDef
	index map[string]int // keyed by ID
}

// NewRuleSet creates a rule set. Rule IDs must be unique and non-empty and
// every rule needs a Check function.
func NewRuleSet(defs ...RuleDef) (*RuleSet, error) {
	s := &RuleSet{
		rules: make([]RuleDef, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("rule %q has no ID", def.Name)
		}
		if def.Check == nil {
			return nil, fmt.Errorf("rule %s has no check function", def.ID)
		}
		if _, dup := s.index[def.ID]; dup {
			return nil, fmt.Errorf("rule %s registered more than once", def.ID)
		}
		s.index[def.ID] = len(s.rules)
		s.rules = append(s.rules, def)
	}
	return s, nil
}

// MustRuleSet is like NewRuleSet but panics on error.
// Intended for statically declared rule lists.
func MustRuleSet(defs ...RuleDef) *RuleSet {
	s, err := NewRuleSet(defs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Rules returns the rules in registration order.
func (s *RuleSet) Rules() []RuleDef {
	out := make([]RuleDef, len(s.rules))
	copy(out, s.rules)
	return out
}

// Get returns a rule by its ID.
func (s *RuleSet) Get(id string) (RuleDef, bool) {
	i, ok := s.index[id]
	if !ok {
		return RuleDef{}, false
	}
	return s.rules[i], true
}

// GetByGroup returns all rules in a specific group, in registration order.
func (s *RuleSet) GetByGroup(group string) []RuleDef {
	var rules []RuleDef
	for _, r := range s.rules {
		if r.Group == group {
			rules = append(rules, r)
		}
	}
	return rules
}

// Len returns the number of rules.
func (s *RuleSet) Len() int {
	return len(s.rules)
}

// Info returns metadata for every rule in registration order.
func (s *RuleSet) Info() []core.RuleInfo {
	infos := make([]core.RuleInfo, len(s.rules))
	for i, r := range s.rules {
		infos[i] = r.Info()
	}
	return infos
}
