// ABOUTME: Tests for the .env loader: line parsing, quoting, comments, and no-clobber behavior.
// ABOUTME: Uses t.Setenv followed by os.Unsetenv so each variable starts absent and is restored.
package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestParseDotEnvLine(t *testing.T) {
	tests := []struct {
		line      string
		wantKey   string
		wantValue string
		wantOK    bool
	}{
		{line: "A=1", wantKey: "A", wantValue: "1", wantOK: true},
		{line: "  B = two  ", wantKey: "B", wantValue: "two", wantOK: true},
		{line: `C="quoted value"`, wantKey: "C", wantValue: "quoted value", wantOK: true},
		{line: `D='single'`, wantKey: "D", wantValue: "single", wantOK: true},
		{line: `E="mismatched'`, wantKey: "E", wantValue: `"mismatched'`, wantOK: true},
		{line: "export F=x", wantKey: "F", wantValue: "x", wantOK: true},
		{line: "G=a=b", wantKey: "G", wantValue: "a=b", wantOK: true},
		{line: "H=", wantKey: "H", wantValue: "", wantOK: true},
		{line: "# comment", wantOK: false},
		{line: "", wantOK: false},
		{line: "no equals", wantOK: false},
		{line: "=value", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			key, value, ok := parseDotEnvLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if key != tt.wantKey || value != tt.wantValue {
				t.Errorf("got %q=%q, want %q=%q", key, value, tt.wantKey, tt.wantValue)
			}
		})
	}
}

func TestLoadDotEnvSetsVariables(t *testing.T) {
	unsetForTest(t, "NATDASH_TEST_A", "NATDASH_TEST_B")
	path := writeTempEnv(t, "# settings\nNATDASH_TEST_A=hello\n\nexport NATDASH_TEST_B=\"world\"\n")

	loadDotEnv(path)

	if got := os.Getenv("NATDASH_TEST_A"); got != "hello" {
		t.Errorf("expected NATDASH_TEST_A=hello, got %q", got)
	}
	if got := os.Getenv("NATDASH_TEST_B"); got != "world" {
		t.Errorf("expected NATDASH_TEST_B=world, got %q", got)
	}
}

func TestLoadDotEnvDoesNotClobber(t *testing.T) {
	t.Setenv("NATDASH_TEST_KEEP", "from-env")
	path := writeTempEnv(t, "NATDASH_TEST_KEEP=from-file\n")

	loadDotEnv(path)

	if got := os.Getenv("NATDASH_TEST_KEEP"); got != "from-env" {
		t.Errorf("expected existing value to win, got %q", got)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	loadDotEnv(filepath.Join(t.TempDir(), "does-not-exist"))
}
