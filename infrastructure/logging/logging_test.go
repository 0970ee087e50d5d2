package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/thinker-go/domain/thinker"
	"github.com/felixgeelhaar/thinker-go/domain/world"
)

// testLogger creates a logger that writes to a buffer for testing
func testLogger() (*bolt.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := bolt.NewJSONHandler(buf)
	logger := bolt.New(handler).SetLevel(bolt.TRACE)
	return logger, buf
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()

	if config.Level != "info" {
		t.Errorf("Level = %s, want info", config.Level)
	}
	if config.Format != "console" {
		t.Errorf("Format = %s, want console", config.Format)
	}
	if config.Output != os.Stdout {
		t.Errorf("Output = %v, want os.Stdout", config.Output)
	}
}

func TestProductionConfig(t *testing.T) {
	t.Parallel()

	config := ProductionConfig()

	if config.Level != "info" {
		t.Errorf("Level = %s, want info", config.Level)
	}
	if config.Format != "json" {
		t.Errorf("Format = %s, want json", config.Format)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bolt.Level
	}{
		{"trace", bolt.TRACE},
		{"debug", bolt.DEBUG},
		{"info", bolt.INFO},
		{"warn", bolt.WARN},
		{"error", bolt.ERROR},
		{"unknown", bolt.INFO}, // Default
		{"", bolt.INFO},        // Empty defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			result := parseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLevel(%s) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestTickField(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	event := logger.Info()
	Tick(42)(event).Msg("test")

	if !bytes.Contains(buf.Bytes(), []byte(`"tick":42`)) {
		t.Errorf("expected tick field in output: %s", buf.String())
	}
}

func TestStateFields(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	event := logger.Info()
	FromState(world.Executing)(ToState(world.Cancelled)(event)).Msg("test")

	if !bytes.Contains(buf.Bytes(), []byte(`"from_state":"executing"`)) {
		t.Errorf("expected from_state field in output: %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"to_state":"cancelled"`)) {
		t.Errorf("expected to_state field in output: %s", buf.String())
	}
}

func TestOutcomeField(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	event := logger.Info()
	Outcome(thinker.OutcomeSpawned)(event).Msg("test")

	if !bytes.Contains(buf.Bytes(), []byte(`"outcome":"spawned"`)) {
		t.Errorf("expected outcome field in output: %s", buf.String())
	}
}

func TestScoreField(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	event := logger.Info()
	Score(0.75)(event).Msg("test")

	if !bytes.Contains(buf.Bytes(), []byte(`"score":"0.7500"`)) {
		t.Errorf("expected score field in output: %s", buf.String())
	}
}

func TestNodeField(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	w := world.New()
	h := w.SpawnAgent()

	event := logger.Info()
	Node(h)(event).Msg("test")

	if !bytes.Contains(buf.Bytes(), []byte(`"node":"`)) {
		t.Errorf("expected node field in output: %s", buf.String())
	}
}

func TestLogEventChaining(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	NewEvent(logger.Info()).
		Add(Component("engine")).
		Add(Pass("thinker")).
		Add(Reason("arbitration")).
		Msg("reconciled")

	for _, want := range []string{`"component":"engine"`, `"pass":"thinker"`, `"reason":"arbitration"`} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("expected %s in output: %s", want, buf.String())
		}
	}
}
