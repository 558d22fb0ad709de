package dotenv

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileIsNoop(t *testing.T) {
	t.Parallel()
	if err := Load(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
}

func TestLoad_SetsNewAndPreservesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "" +
		"# gateway settings\n" +
		"DHOZZI_ADDR=:9090\n" +
		"DHOZZI_STRIPE_SUCCESS_URL=\"https://dhozzi.app/topup/done\"\n" +
		"export GEMINI_API_KEY=abc123\n" +
		"DHOZZI_LIMIT_RPS=5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("DHOZZI_LIMIT_RPS", "50")
	t.Setenv("DHOZZI_ADDR", "")
	os.Unsetenv("DHOZZI_ADDR")
	t.Setenv("DHOZZI_STRIPE_SUCCESS_URL", "")
	os.Unsetenv("DHOZZI_STRIPE_SUCCESS_URL")
	t.Setenv("GEMINI_API_KEY", "")
	os.Unsetenv("GEMINI_API_KEY")

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := os.Getenv("DHOZZI_ADDR"); got != ":9090" {
		t.Errorf("DHOZZI_ADDR = %q", got)
	}
	if got := os.Getenv("DHOZZI_STRIPE_SUCCESS_URL"); got != "https://dhozzi.app/topup/done" {
		t.Errorf("quoted value = %q", got)
	}
	if got := os.Getenv("GEMINI_API_KEY"); got != "abc123" {
		t.Errorf("exported value = %q", got)
	}
	if got := os.Getenv("DHOZZI_LIMIT_RPS"); got != "50" {
		t.Errorf("existing value clobbered: %q", got)
	}
}

func TestParseLine(t *testing.T) {
	t.Parallel()
	cases := []struct {
		line     string
		key, val string
		ok       bool
	}{
		{"A=b", "A", "b", true},
		{"  A = b ", "A", "b", true},
		{"A='b c'", "A", "b c", true},
		{"# comment", "", "", false},
		{"", "", "", false},
		{"noequals", "", "", false},
		{"=orphan", "", "", false},
	}
	for _, tc := range cases {
		key, val, ok := parseLine(tc.line)
		if key != tc.key || val != tc.val || ok != tc.ok {
			t.Errorf("parseLine(%q) = %q, %q, %v", tc.line, key, val, ok)
		}
	}
}
