package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// demoDefinition is a definition the run command's built-in world can resolve.
const demoDefinition = `
picker:
  type: first_to_score
  threshold: 0.5
choices:
  - when:
      kind: leaf
      name: thirst
    then:
      kind: step
      steps:
        - kind: leaf
          name: go_to_water
        - kind: leaf
          name: drink
  - when:
      kind: leaf
      name: hunger
    then:
      kind: leaf
      name: eat
otherwise:
  kind: leaf
  name: meander
`

func writeDefinition(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "def.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write definition file: %v", err)
	}
	return path
}

func TestApp_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr)

	err := app.ExecuteWithArgs(context.Background(), []string{"version"})
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "thinker-go version") {
		t.Errorf("version output missing 'thinker-go version', got: %s", output)
	}
}

func TestApp_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr)

	err := app.ExecuteWithArgs(context.Background(), []string{"--help"})
	if err != nil {
		t.Fatalf("help command failed: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "utility-AI decision engine") {
		t.Errorf("help output missing description, got: %s", output)
	}
	if !strings.Contains(output, "run") {
		t.Errorf("help output missing 'run' command, got: %s", output)
	}
	if !strings.Contains(output, "validate") {
		t.Errorf("help output missing 'validate' command, got: %s", output)
	}
}

func TestApp_Validate(t *testing.T) {
	path := writeDefinition(t, demoDefinition)

	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr)

	err := app.ExecuteWithArgs(context.Background(), []string{"validate", "-c", path})
	if err != nil {
		t.Fatalf("validate command failed: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "valid") {
		t.Errorf("validate output missing 'valid', got: %s", output)
	}
	if !strings.Contains(output, "first_to_score") {
		t.Errorf("validate output missing picker type, got: %s", output)
	}
	if !strings.Contains(output, `leaf "thirst"`) {
		t.Errorf("validate output missing choice summary, got: %s", output)
	}
}

func TestApp_ValidateInvalid(t *testing.T) {
	path := writeDefinition(t, `
picker:
  type: best_guess
  threshold: 0.5
choices:
  - when:
      kind: leaf
      name: thirst
    then:
      kind: leaf
      name: drink
`)

	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr)

	err := app.ExecuteWithArgs(context.Background(), []string{"validate", "-c", path})
	if err == nil {
		t.Fatal("expected validation error for unknown picker type")
	}
	if !strings.Contains(err.Error(), "picker.type") {
		t.Errorf("expected picker.type in error, got: %v", err)
	}
}

func TestApp_ValidateMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr)

	err := app.ExecuteWithArgs(context.Background(), []string{"validate", "-c", "/nonexistent/def.yaml"})
	if err == nil {
		t.Fatal("expected error for missing definition file")
	}
}

func TestApp_Run(t *testing.T) {
	path := writeDefinition(t, demoDefinition)

	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr)

	err := app.ExecuteWithArgs(context.Background(), []string{"run", "-c", path, "--ticks", "30"})
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "Run completed") {
		t.Errorf("run output missing summary, got: %s", output)
	}
	if !strings.Contains(output, "Ticks: 30") {
		t.Errorf("run output missing tick count, got: %s", output)
	}
}

func TestApp_RunJSON(t *testing.T) {
	path := writeDefinition(t, demoDefinition)

	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr)

	err := app.ExecuteWithArgs(context.Background(), []string{"run", "-c", path, "--ticks", "10", "--json"})
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}

	var summary struct {
		Ticks  uint64             `json:"ticks"`
		Drives map[string]float64 `json:"drives"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &summary); err != nil {
		t.Fatalf("run --json output is not valid JSON: %v\noutput: %s", err, stdout.String())
	}
	if summary.Ticks != 10 {
		t.Errorf("expected 10 ticks, got %d", summary.Ticks)
	}
	if _, ok := summary.Drives["thirst"]; !ok {
		t.Errorf("expected thirst drive in summary, got: %v", summary.Drives)
	}
}

func TestApp_RunUnknownLeaf(t *testing.T) {
	path := writeDefinition(t, `
picker:
  type: highest
choices:
  - when:
      kind: leaf
      name: bloodlust
    then:
      kind: leaf
      name: drink
`)

	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr)

	err := app.ExecuteWithArgs(context.Background(), []string{"run", "-c", path, "--ticks", "5"})
	if err == nil {
		t.Fatal("expected error for unregistered scorer leaf")
	}
	if !strings.Contains(err.Error(), "bloodlust") {
		t.Errorf("expected leaf name in error, got: %v", err)
	}
}
