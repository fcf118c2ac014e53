// Package plan runs declarative check plans: YAML or JSON
// documents listing checks to apply to values picked out of a
// values document.
package plan

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"digital.vasic.pavlov/pkg/assertion"
	"digital.vasic.pavlov/pkg/introspect"
)

// ErrInvalidPlan is returned when a plan document is
// structurally unusable.
var ErrInvalidPlan = errors.New("invalid plan")

// Plan is a named list of steps.
type Plan struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Steps       []Step `yaml:"steps" json:"steps"`

	// Source is the file the plan was loaded from, if any.
	Source string `yaml:"-" json:"-"`
}

// Step applies one catalog check to the value found at Target.
// Check is either a bare check name or the compact
// "name:literal" form, in which case the literal is the
// expected value unless Expected is set.
type Step struct {
	Check       string `yaml:"check" json:"check"`
	Target      string `yaml:"target,omitempty" json:"target,omitempty"`
	Expected    any    `yaml:"expected,omitempty" json:"expected,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Message     string `yaml:"message,omitempty" json:"message,omitempty"`

	hasExpected bool
}

var stepKeys = map[string]bool{
	"check":       true,
	"target":      true,
	"expected":    true,
	"description": true,
	"message":     true,
}

// UnmarshalYAML rejects unknown keys and records whether the
// expected key was present, so an explicit null can be told apart
// from an omitted value.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if !stepKeys[key.Value] {
				return fmt.Errorf("%w: line %d: unknown step key %q", ErrInvalidPlan, key.Line, key.Value)
			}
		}
	}

	type rawStep Step
	var raw rawStep
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*s = Step(raw)

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "expected" {
			s.hasExpected = true
		}
	}
	return nil
}

// WithExpected returns a copy of s carrying expected.
func (s Step) WithExpected(expected any) Step {
	s.Expected = expected
	s.hasExpected = true
	return s
}

// Resolve splits the step's check into the catalog name and the
// expected value. The second return is Undefined when the step
// supplies none.
func (s Step) Resolve() (name string, expected any, err error) {
	name, literal, ok := assertion.ParseCheckString(s.Check)
	if name == "" {
		return "", nil, fmt.Errorf("%w: step has no check", ErrInvalidPlan)
	}

	switch {
	case s.hasExpected:
		return name, s.Expected, nil
	case ok:
		return name, literal, nil
	}
	return name, introspect.Undefined, nil
}

// Validate reports the first structural problem in p.
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidPlan)
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: %s has no steps", ErrInvalidPlan, p.Name)
	}
	for i, s := range p.Steps {
		if _, _, err := s.Resolve(); err != nil {
			return fmt.Errorf("%s step %d: %w", p.Name, i+1, err)
		}
	}
	return nil
}
