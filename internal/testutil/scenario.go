// Package testutil provides shared test helpers for glox tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ScenariosDir is the relative path from the module root to the scenario suites.
const ScenariosDir = "testdata/scenarios"

// Suite is one YAML file of scenarios.
type Suite struct {
	File      string     `yaml:"-"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario is a Lox program together with its expected outcome.
type Scenario struct {
	Name        string         `yaml:"name"`
	Source      string         `yaml:"source"`
	Stdout      []string       `yaml:"stdout,omitempty"`
	Diagnostics []ExpectedDiag `yaml:"diagnostics,omitempty"`
	Exit        int            `yaml:"exit"`
	Tags        []string       `yaml:"tags,omitempty"`
}

// ExpectedDiag is a diagnostic a scenario must report. A zero Line matches
// any line.
type ExpectedDiag struct {
	Code    string `yaml:"code"`
	Message string `yaml:"message"`
	Line    int    `yaml:"line,omitempty"`
}

// LoadSuite reads a suite file. Unknown keys are errors.
func LoadSuite(file string) (*Suite, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	s := &Suite{File: file}
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("%s: %v", file, err)
	}
	seen := make(map[string]bool, len(s.Scenarios))
	for i, sc := range s.Scenarios {
		if sc.Name == "" {
			return nil, fmt.Errorf("%s: scenario %d has no name", file, i)
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("%s: duplicate scenario %q", file, sc.Name)
		}
		seen[sc.Name] = true
	}
	return s, nil
}

// ListSuites returns all suite files under root in name order.
func ListSuites(root string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(root, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
