package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "lifecycle.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "lifecycle", s.Name)
	require.Len(t, s.Setup, 3)
	assert.Equal(t, "a", s.Setup[0].As)
	require.Len(t, s.Flow, 4)
	assert.Equal(t, []string{"c", "a", "b"}, s.Flow[0].Refs)
	assert.Equal(t, "NOT_FOUND", s.Flow[3].ExpectError)
	require.Len(t, s.Assertions, 4)
	require.NotNil(t, s.Assertions[2].Revision)
	assert.Equal(t, int64(6), *s.Assertions[2].Revision)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: misspelled key
flow:
  - op: create
    titel: A
assertions:
  - type: revision
    revision: 1
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing name",
			src:  "description: d\nflow: [{op: create, title: A}]\nassertions: [{type: revision, revision: 1}]",
			want: "name is required",
		},
		{
			name: "missing description",
			src:  "name: n\nflow: [{op: create, title: A}]\nassertions: [{type: revision, revision: 1}]",
			want: "description is required",
		},
		{
			name: "empty flow",
			src:  "name: n\ndescription: d\nassertions: [{type: revision, revision: 1}]",
			want: "flow list is required",
		},
		{
			name: "no assertions",
			src:  "name: n\ndescription: d\nflow: [{op: create, title: A}]",
			want: "assertions list is required",
		},
		{
			name: "unknown op",
			src:  "name: n\ndescription: d\nflow: [{op: rename}]\nassertions: [{type: revision, revision: 1}]",
			want: `flow[0]: unknown op "rename"`,
		},
		{
			name: "toggle without ref",
			src:  "name: n\ndescription: d\nflow: [{op: toggle}]\nassertions: [{type: revision, revision: 1}]",
			want: "ref is required for toggle",
		},
		{
			name: "empty positions",
			src:  "name: n\ndescription: d\nflow: [{op: positions}]\nassertions: [{type: revision, revision: 1}]",
			want: "positions list is required",
		},
		{
			name: "unknown error code",
			src:  "name: n\ndescription: d\nflow: [{op: delete, ref: x, expect_error: GONE}]\nassertions: [{type: revision, revision: 1}]",
			want: `unknown expect_error "GONE"`,
		},
		{
			name: "expect_error in setup",
			src:  "name: n\ndescription: d\nsetup: [{op: delete, ref: x, expect_error: NOT_FOUND}]\nflow: [{op: clear_completed}]\nassertions: [{type: revision, revision: 1}]",
			want: "setup[0]: expect_error is not allowed",
		},
		{
			name: "bad filter",
			src:  "name: n\ndescription: d\nflow: [{op: clear_completed}]\nassertions: [{type: view, filter: someday}]",
			want: "assertions[0]",
		},
		{
			name: "count without count",
			src:  "name: n\ndescription: d\nflow: [{op: clear_completed}]\nassertions: [{type: count, filter: all}]",
			want: "count must be set",
		},
		{
			name: "unknown assertion",
			src:  "name: n\ndescription: d\nflow: [{op: clear_completed}]\nassertions: [{type: trace_order}]",
			want: `unknown assertion type "trace_order"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarios_SortedAndFailing(t *testing.T) {
	dir := t.TempDir()
	valid := "name: %s\ndescription: d\nflow: [{op: clear_completed}]\nassertions: [{type: revision, revision: 1}]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(fmt.Sprintf(valid, "second")), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(fmt.Sprintf(valid, "first")), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "first", scenarios[0].Name)
	assert.Equal(t, "second", scenarios[1].Name)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.yaml"), []byte("name: broken"), 0644))
	_, err = LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c.yaml")
}
