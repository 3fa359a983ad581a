package shellutil_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"zcomx/internal/shellutil"
)

func TestQuote(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Book001.cbz", "Book001.cbz"},
		{"empty", "", "''"},
		{"space", "My Book", "'My Book'"},
		{"single_quote", "it's", `'it'"'"'s'`},
		{"double_quote", `say "hi"`, `'say "hi"'`},
		{"backslash", `a\b`, `'a\b'`},
		{"dollar", "$HOME", "'$HOME'"},
		{"semicolon", "a;rm -rf /", "'a;rm -rf /'"},
		{"utf8", "böök — crépe", "'böök — crépe'"},
		{"newline", "a\nb", "'a\nb'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := shellutil.Quote(tc.input); got != tc.expected {
				t.Fatalf("Quote(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestSplitRoundTripsQuoteAll(t *testing.T) {
	argSets := [][]string{
		{"zcomx", "create-cbz", "--book-id", "7"},
		{"zcomx", "fileshare-book", "My Book (99.zco.mx)", "--reverse"},
		{"echo", "it's", `say "hi"`, "a\\b", "päge ①"},
		{"cmd", ""},
	}
	for _, args := range argSets {
		command := shellutil.QuoteAll(args)
		got, err := shellutil.Split(command)
		if err != nil {
			t.Fatalf("Split(%q): %v", command, err)
		}
		if !reflect.DeepEqual(got, args) {
			t.Fatalf("round trip %q: got %#v, want %#v", command, got, args)
		}
	}
}

func TestSplit(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected []string
	}{
		{"plain", "a b  c", []string{"a", "b", "c"}},
		{"single_quoted", "a 'b c' d", []string{"a", "b c", "d"}},
		{"double_quoted", `a "b \"c\"" d`, []string{"a", `b "c"`, "d"}},
		{"escape", `a\ b`, []string{"a b"}},
		{"empty_word", "a '' b", []string{"a", "", "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := shellutil.Split(tc.input)
			if err != nil {
				t.Fatalf("Split(%q): %v", tc.input, err)
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Fatalf("Split(%q) = %#v, want %#v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestSplitUnterminated(t *testing.T) {
	for _, input := range []string{"a 'b", `a "b`, `a\`} {
		if _, err := shellutil.Split(input); !errors.Is(err, shellutil.ErrUnterminatedQuote) {
			t.Fatalf("Split(%q): expected ErrUnterminatedQuote, got %v", input, err)
		}
	}
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunnerCapturesOutput(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "ok.sh", "echo out; echo err >&2\n")

	result, err := shellutil.Runner{}.Run(context.Background(), script, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != "out" {
		t.Fatalf("unexpected stdout: %q", result.Stdout)
	}
	if strings.TrimSpace(result.Stderr) != "err" {
		t.Fatalf("unexpected stderr: %q", result.Stderr)
	}
}

func TestRunnerExitError(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "fail.sh", "echo boom >&2; exit 3\n")

	_, err := shellutil.Runner{}.Run(context.Background(), script, nil)
	var exitErr *shellutil.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", exitErr.ExitCode)
	}
	if !strings.Contains(exitErr.Error(), "boom") {
		t.Fatalf("expected stderr in message, got %q", exitErr.Error())
	}
}

func TestRunnerNicePrefix(t *testing.T) {
	dir := t.TempDir()
	// Fake nice prints a marker and execs the rest.
	fakeNice := writeScript(t, dir, "nice", "echo niced; exec \"$@\"\n")
	target := writeScript(t, dir, "work.sh", "echo done\n")

	result, err := shellutil.Runner{NiceBinary: fakeNice}.RunNice(context.Background(), target, nil)
	if err != nil {
		t.Fatalf("RunNice: %v", err)
	}
	if !strings.Contains(result.Stdout, "niced") || !strings.Contains(result.Stdout, "done") {
		t.Fatalf("expected nice prefix to run, got %q", result.Stdout)
	}
}
