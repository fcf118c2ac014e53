package plan

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML or JSON plan document. source names the
// document in errors and becomes the plan's default name.
func Parse(data []byte, source string) (*Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf(
			"failed to parse plan from %s: %w", source, err,
		)
	}

	p.Source = source
	if p.Name == "" && source != "" {
		base := filepath.Base(source)
		p.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("plan %s: %w", source, err)
	}
	return &p, nil
}

// LoadFile reads a single plan file.
func LoadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to read plan file %s: %w", path, err,
		)
	}
	return Parse(data, path)
}

// LoadDir loads every .json, .yaml and .yml plan in dir, sorted
// by file name. It does not recurse into subdirectories.
func LoadDir(dir string) ([]*Plan, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to read directory %s: %w", dir, err,
		)
	}

	var plans []*Plan
	for _, entry := range entries {
		if entry.IsDir() || !IsPlanFile(entry.Name()) {
			continue
		}

		p, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].Source < plans[j].Source
	})
	return plans, nil
}

// LoadPaths loads each path, expanding directories with
// LoadDir.
func LoadPaths(paths ...string) ([]*Plan, error) {
	var plans []*Plan
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if info.IsDir() {
			loaded, err := LoadDir(path)
			if err != nil {
				return nil, err
			}
			plans = append(plans, loaded...)
			continue
		}

		p, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// IsPlanFile reports whether name has a plan file extension.
func IsPlanFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadValues reads the YAML or JSON values document steps are
// evaluated against. An empty path yields an empty document.
func LoadValues(path string) (any, error) {
	if path == "" {
		return map[string]any{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to read values file %s: %w", path, err,
		)
	}
	return ParseValues(data, path)
}

// ParseValues decodes a YAML or JSON values document read from
// source. An empty document yields an empty map.
func ParseValues(data []byte, source string) (any, error) {
	var values any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf(
			"failed to parse values from %s: %w", source, err,
		)
	}
	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}
