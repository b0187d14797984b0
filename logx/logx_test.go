package logx

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelWarn, &buf)

	log.Debugf("hidden")
	log.Infof("also hidden")
	log.Warnf("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "visible") {
		t.Fatalf("expected WARN line, got %q", out)
	}
}

func TestWithAddsFieldsWithoutMutatingParent(t *testing.T) {
	var buf bytes.Buffer
	base := New(LevelDebug, &buf)
	child := base.With(map[string]any{"ast_id": 7})

	child.Infof("trained sample")
	base.Infof("unrelated")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "ast_id=7") {
		t.Fatalf("expected child line to carry ast_id field, got %q", lines[0])
	}
	if strings.Contains(lines[1], "ast_id") {
		t.Fatalf("parent logger mutated by With: %q", lines[1])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"ERROR": LevelError,
		"warn":  LevelWarn,
		"INFO":  LevelInfo,
		"debug": LevelDebug,
		"huh":   LevelWarn,
	}
	for s, want := range cases {
		if got := ParseLevel(s); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestNoopDiscardsEverything(t *testing.T) {
	log := Noop()
	log.Errorf("should not panic or write anywhere")
	_ = log.With(map[string]any{"x": 1})
}
