package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestWriteOutputIndentedJSON(t *testing.T) {
	origJSONL := jsonlOutput
	jsonlOutput = false
	defer func() { jsonlOutput = origJSONL }()

	var buf bytes.Buffer
	payload := map[string]string{"name": "example"}

	if err := WriteOutput(&buf, payload); err != nil {
		t.Fatalf("WriteOutput failed: %v", err)
	}

	if !strings.Contains(buf.String(), "  \"name\": \"example\"") {
		t.Errorf("output = %q, want indented JSON", buf.String())
	}
}

func TestWriteOutputJSONLSlice(t *testing.T) {
	origJSONL := jsonlOutput
	jsonlOutput = true
	defer func() { jsonlOutput = origJSONL }()

	var buf bytes.Buffer
	payload := []map[string]int{{"a": 1}, {"b": 2}, {"c": 3}}

	if err := WriteOutput(&buf, payload); err != nil {
		t.Fatalf("WriteOutput failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	for i, line := range lines {
		var decoded map[string]int
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestWriteOutputJSONLScalar(t *testing.T) {
	origJSONL := jsonlOutput
	jsonlOutput = true
	defer func() { jsonlOutput = origJSONL }()

	var buf bytes.Buffer
	if err := WriteOutput(&buf, map[string]string{"status": "ok"}); err != nil {
		t.Fatalf("WriteOutput failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Errorf("expected single line, got %d", len(lines))
	}
}

func TestColorizeRespectsNoColor(t *testing.T) {
	origNoColor := noColor
	noColor = true
	defer func() { noColor = origNoColor }()

	if got := colorize("hello", colorGreen); got != "hello" {
		t.Errorf("colorize with --no-color = %q, want plain text", got)
	}
}
