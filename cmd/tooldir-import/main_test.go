package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCatalog = `{"tools":[
	{"id":"zed","name":"Zed","description":"Editor","categories":["dev"],"tags":[],"url":"https://zed.dev","audience":["developers"],"tier":"free"},
	{"id":"warp","name":"Warp","description":"Terminal","categories":["dev"],"tags":["shell"],"url":"https://warp.dev","audience":["developers"],"tier":"freemium"}
]}`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tools.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// clearEnv points the importer at a throwaway SQLite file
func clearEnv(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"DB_TYPE", "REDIS_URL", "RATE_LIMIT_STORE", "PUBLIC_URL", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
	dbPath := filepath.Join(t.TempDir(), "tooldir.db")
	t.Setenv("DB_PATH", dbPath)
	return dbPath
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    ImportOptions
		wantErr bool
	}{
		{"valid sync", ImportOptions{Source: "tools.json", Mode: "sync"}, false},
		{"valid fresh", ImportOptions{Source: "s3://b/k", Mode: "fresh"}, false},
		{"missing source", ImportOptions{Mode: "sync"}, true},
		{"bad mode", ImportOptions{Source: "tools.json", Mode: "merge"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validateOptions(&tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRun_DryRun(t *testing.T) {
	dbPath := clearEnv(t)

	report := run(context.Background(), &ImportOptions{Source: writeCatalog(t, testCatalog), Mode: "sync", DryRun: true})
	if !report.Success {
		t.Fatalf("dry run failed: %s", report.Error)
	}
	if report.Result.Tools != 2 || report.Result.Upserted != 0 {
		t.Errorf("result = %+v, want 2 tools and no writes", report.Result)
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Error("dry run created the database")
	}
}

func TestRun_Import(t *testing.T) {
	clearEnv(t)

	report := run(context.Background(), &ImportOptions{Source: writeCatalog(t, testCatalog), Mode: "fresh"})
	if !report.Success {
		t.Fatalf("import failed: %s", report.Error)
	}
	if report.Result.Upserted != 2 {
		t.Errorf("upserted = %d, want 2", report.Result.Upserted)
	}
}

func TestRun_ValidationIssues(t *testing.T) {
	clearEnv(t)

	bad := `{"tools":[{"id":"Zed!","name":"","description":"x","categories":[],"tags":[],"url":"zed.dev","audience":["a"],"tier":"free"}]}`
	report := run(context.Background(), &ImportOptions{Source: writeCatalog(t, bad), Mode: "sync"})
	if report.Success {
		t.Fatal("import of invalid catalog succeeded")
	}
	if len(report.Issues) != 4 {
		t.Errorf("issues = %+v, want 4 (id, name, url, categories)", report.Issues)
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	if !strings.Contains(buf.String(), "CATALOG IMPORT FAILED") || !strings.Contains(buf.String(), "4 validation issues") {
		t.Errorf("report output missing failure summary:\n%s", buf.String())
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	printJSON(&buf, &ImportReport{Source: "tools.json", Success: true})

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["source"] != "tools.json" || decoded["success"] != true {
		t.Errorf("decoded = %v", decoded)
	}
}
