package prospects

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseJSONL(t *testing.T) {
	data := strings.Join([]string{
		`{"handle":"sarah_tech","platform":"twitter","follower_count":2500,"keywords":["AI"]}`,
		"",
		`{"handle":"mike-founder","platform":"linkedin","last_activity_days_ago":5}`,
	}, "\n")

	records, err := ParseJSONL(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseJSONL error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Handle != "sarah_tech" {
		t.Fatalf("expected first handle sarah_tech, got %q", records[0].Handle)
	}
	if records[0].FollowerCount != 2500 {
		t.Fatalf("expected follower count 2500, got %d", records[0].FollowerCount)
	}
	if records[1].LastActivityDaysAgo == nil || *records[1].LastActivityDaysAgo != 5 {
		t.Fatalf("expected days ago 5, got %v", records[1].LastActivityDaysAgo)
	}
}

func TestParseJSONLInvalidLine(t *testing.T) {
	data := `{"handle":"ok"}` + "\n" + "{not-json}\n"

	_, err := ParseJSONL(strings.NewReader(data))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line number in error, got %v", err)
	}
}

func TestParseYAMLBareList(t *testing.T) {
	data := `
- handle: sarah_tech
  platform: twitter
  follower_count: 2500
- handle: mike-founder
  platform: linkedin
  has_engaged_with_us: true
`
	records, err := ParseYAML(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseYAML error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !records[1].HasEngagedWithUs {
		t.Fatal("expected engagement flag to parse")
	}
}

func TestParseYAMLWrappedList(t *testing.T) {
	data := `
prospects:
  - handle: sarah_tech
    platform: twitter
    keywords: [AI, automation]
`
	records, err := ParseYAML(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseYAML error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if len(records[0].Keywords) != 2 || records[0].Keywords[0] != "AI" {
		t.Fatalf("unexpected keywords: %v", records[0].Keywords)
	}
}

func TestReadFilePicksParserByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonlPath := filepath.Join(dir, "list.jsonl")
	if err := os.WriteFile(jsonlPath, []byte(`{"handle":"a","platform":"twitter"}`+"\n"), 0o644); err != nil {
		t.Fatalf("write jsonl: %v", err)
	}
	yamlPath := filepath.Join(dir, "list.yaml")
	if err := os.WriteFile(yamlPath, []byte("- handle: b\n  platform: twitter\n"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	jsonPath := filepath.Join(dir, "list.json")
	if err := os.WriteFile(jsonPath, []byte(`[{"handle":"c","platform":"twitter"}]`), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}

	for _, tc := range []struct {
		path   string
		handle string
	}{
		{jsonlPath, "a"},
		{yamlPath, "b"},
		{jsonPath, "c"},
	} {
		records, err := ReadFile(tc.path)
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", tc.path, err)
		}
		if len(records) != 1 || records[0].Handle != tc.handle {
			t.Fatalf("ReadFile(%s): unexpected records %+v", tc.path, records)
		}
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.jsonl")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
