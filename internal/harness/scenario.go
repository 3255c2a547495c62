package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/todosync/internal/todo"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup steps establish initial state. Any failure aborts the run.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow is the main sequence. Each step may expect an error code.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one engine command.
type Step struct {
	// Op is one of create, toggle, delete, reorder, positions, clear_completed.
	Op string `yaml:"op"`

	// Title and Description are used by create.
	Title       string  `yaml:"title,omitempty"`
	Description *string `yaml:"description,omitempty"`

	// As labels the created todo for later refs.
	As string `yaml:"as,omitempty"`

	// Ref targets toggle and delete.
	Ref string `yaml:"ref,omitempty"`

	// Completed is the toggle target state. Defaults to true.
	Completed *bool `yaml:"completed,omitempty"`

	// Refs is the reorder sequence.
	Refs []string `yaml:"refs,omitempty"`

	// Positions are explicit position updates.
	Positions []PositionStep `yaml:"positions,omitempty"`

	// ExpectError is the error code the step must fail with.
	// Empty means the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// PositionStep sets one todo's position.
type PositionStep struct {
	Ref      string  `yaml:"ref"`
	Position float64 `yaml:"position"`
}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "view": todos under Filter have exactly Titles, in order
	// - "count": Filter matches Count todos
	// - "revision": the engine revision equals Revision
	// - "live": a subscription opened before the flow holds a fresh read
	Type string `yaml:"type"`

	Filter   string   `yaml:"filter,omitempty"`
	Titles   []string `yaml:"titles,omitempty"`
	Count    *int     `yaml:"count,omitempty"`
	Revision *int64   `yaml:"revision,omitempty"`
}

// Step op constants.
const (
	OpCreate         = "create"
	OpToggle         = "toggle"
	OpDelete         = "delete"
	OpReorder        = "reorder"
	OpPositions      = "positions"
	OpClearCompleted = "clear_completed"
)

// Assertion type constants.
const (
	AssertView     = "view"
	AssertCount    = "count"
	AssertRevision = "revision"
	AssertLive     = "live"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if step.ExpectError != "" {
			return fmt.Errorf("setup[%d]: expect_error is not allowed in setup", i)
		}
		if err := validateStep(step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	return nil
}

func validateStep(step Step) error {
	switch step.Op {
	case OpCreate, OpReorder, OpClearCompleted:
	case OpToggle, OpDelete:
		if step.Ref == "" {
			return fmt.Errorf("ref is required for %s", step.Op)
		}
	case OpPositions:
		if len(step.Positions) == 0 {
			return fmt.Errorf("positions list is required for positions")
		}
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	switch todo.ErrorCode(step.ExpectError) {
	case "", todo.ErrCodeValidation, todo.ErrCodeNotFound, todo.ErrCodeTransient:
	default:
		return fmt.Errorf("unknown expect_error %q", step.ExpectError)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertView, AssertLive:
		if _, err := todo.ParseFilter(a.Filter); err != nil {
			return err
		}
	case AssertCount:
		if _, err := todo.ParseFilter(a.Filter); err != nil {
			return err
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("count must be set and non-negative for count")
		}
	case AssertRevision:
		if a.Revision == nil {
			return fmt.Errorf("revision is required for revision")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
