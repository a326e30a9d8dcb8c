package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/agentledger/chain/internal/logging"
)

func TestNewJSONFormatWritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("debug", "json", &buf)
	logger.Info().Str("field", "value").Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"field":"value"`) {
		t.Fatalf("expected json output to contain the field, got: %s", out)
	}
	if !strings.Contains(out, `"message":"hello"`) {
		t.Fatalf("expected json output to contain the message, got: %s", out)
	}
}

func TestNewRespectsLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("error", "json", &buf)
	logger.Info().Msg("should be filtered")
	if buf.Len() != 0 {
		t.Fatalf("expected info-level message to be filtered at error level, got: %s", buf.String())
	}

	logger.Error().Msg("should appear")
	if buf.Len() == 0 {
		t.Fatal("expected error-level message to be written")
	}
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("nonsense", "json", &buf)
	logger.Debug().Msg("should be filtered")
	if buf.Len() != 0 {
		t.Fatalf("expected debug message filtered at default info level, got: %s", buf.String())
	}
	logger.Info().Msg("should appear")
	if buf.Len() == 0 {
		t.Fatal("expected info-level message to be written at default level")
	}
}

func TestDefaultReturnsUsableLogger(t *testing.T) {
	logger := logging.Default()
	if logger.GetLevel().String() != "info" {
		t.Fatalf("Default level: got %q, want info", logger.GetLevel().String())
	}
}
