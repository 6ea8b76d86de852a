package prospects

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReadFile loads prospect records from a file, picking the parser from
// the extension. JSONL is the default for unknown extensions.
func ReadFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(file)
	case ".json":
		return parseJSONArray(file)
	default:
		return ParseJSONL(file)
	}
}

// ParseJSONL reads one JSON record per line, skipping blank lines.
// Lines are capped at 10MB.
func ParseJSONL(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	records := []Record{}
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record Record
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("parse prospect line %d: %w", lineNo, err)
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan prospects: %w", err)
	}

	return records, nil
}

// ParseYAML reads records from a YAML document, accepting either a
// bare list or a mapping with a prospects key.
func ParseYAML(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read prospects: %w", err)
	}

	var list []Record
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapper struct {
		Prospects []Record `yaml:"prospects"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse prospects yaml: %w", err)
	}
	return wrapper.Prospects, nil
}

func parseJSONArray(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("parse prospects json: %w", err)
	}
	return records, nil
}
