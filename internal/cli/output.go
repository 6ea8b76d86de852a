// Package cli provides machine-readable output helpers.
package cli

import (
	"encoding/json"
	"io"
	"os"
	"reflect"
)

// ANSI colors for terminal output.
const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
)

// IsJSONOutput reports whether --json was requested.
func IsJSONOutput() bool {
	return jsonOutput
}

// IsJSONLOutput reports whether --jsonl was requested.
func IsJSONLOutput() bool {
	return jsonlOutput
}

// WriteOutput writes payload as indented JSON, or as JSON Lines when
// --jsonl is set. Slices stream one object per line in JSONL mode.
func WriteOutput(out io.Writer, payload any) error {
	if IsJSONLOutput() {
		return writeJSONL(out, payload)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func writeJSONL(out io.Writer, payload any) error {
	encoder := json.NewEncoder(out)

	value := reflect.ValueOf(payload)
	if value.Kind() == reflect.Pointer && !value.IsNil() {
		value = value.Elem()
	}
	if value.Kind() == reflect.Slice || value.Kind() == reflect.Array {
		for i := 0; i < value.Len(); i++ {
			if err := encoder.Encode(value.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	return encoder.Encode(payload)
}

func colorEnabled() bool {
	if noColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return hasTTY()
}

func colorize(s, color string) string {
	if color == "" || !colorEnabled() {
		return s
	}
	return color + s + colorReset
}
