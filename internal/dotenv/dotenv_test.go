package dotenv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseLine(t *testing.T) {
	cases := []struct {
		line string
		key  string
		val  string
		ok   bool
	}{
		{"FOO=bar", "FOO", "bar", true},
		{"  FOO = bar  ", "FOO", "bar", true},
		{"export FOO=bar", "FOO", "bar", true},
		{`FOO="quoted value"`, "FOO", "quoted value", true},
		{"FOO='single'", "FOO", "single", true},
		{"FOO=a=b", "FOO", "a=b", true},
		{"FOO=", "FOO", "", true},
		{"# comment", "", "", false},
		{"", "", "", false},
		{"=oops", "", "", false},
		{"no equals here", "", "", false},
	}
	for _, tc := range cases {
		key, val, ok := parseLine(tc.line)
		if key != tc.key || val != tc.val || ok != tc.ok {
			t.Errorf("parseLine(%q)=(%q,%q,%v), want (%q,%q,%v)",
				tc.line, key, val, ok, tc.key, tc.val, tc.ok)
		}
	}
}

func TestParse_FirstDuplicateWins(t *testing.T) {
	pairs, err := parse(strings.NewReader("A=first\nA=second\nB=only\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if pairs["A"] != "first" || pairs["B"] != "only" {
		t.Fatalf("pairs=%v", pairs)
	}
}

func TestLoad_SetsMissingVariables(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "DOTENV_TEST_NEW=from-file\n# comment\nexport DOTENV_TEST_EXPORTED=yes\n")
	t.Setenv("DOTENV_TEST_NEW", "")
	os.Unsetenv("DOTENV_TEST_NEW")
	t.Setenv("DOTENV_TEST_EXPORTED", "")
	os.Unsetenv("DOTENV_TEST_EXPORTED")

	if err := Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("DOTENV_TEST_NEW"); got != "from-file" {
		t.Fatalf("DOTENV_TEST_NEW=%q", got)
	}
	if got := os.Getenv("DOTENV_TEST_EXPORTED"); got != "yes" {
		t.Fatalf("DOTENV_TEST_EXPORTED=%q", got)
	}
}

func TestLoad_EnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "DOTENV_TEST_SET=from-file\n")
	t.Setenv("DOTENV_TEST_SET", "from-env")

	if err := Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("DOTENV_TEST_SET"); got != "from-env" {
		t.Fatalf("DOTENV_TEST_SET=%q", got)
	}
}

func TestLoad_EarlierFileWins(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.env", "DOTENV_TEST_ORDER=first\n")
	second := writeFile(t, dir, "b.env", "DOTENV_TEST_ORDER=second\n")
	t.Setenv("DOTENV_TEST_ORDER", "")
	os.Unsetenv("DOTENV_TEST_ORDER")

	if err := Load(first, second); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("DOTENV_TEST_ORDER"); got != "first" {
		t.Fatalf("DOTENV_TEST_ORDER=%q", got)
	}
}

func TestLoad_MissingFileSkipped(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("load: %v", err)
	}
}
