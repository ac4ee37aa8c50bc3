package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, args ...string) result {
	t.Helper()

	if args == nil {
		args = []string{}
	}

	rootCmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	code := executeCode(context.Background(), rootCmd)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()

	if !strings.HasPrefix(cmd.Use, "jsonator") {
		t.Errorf("Expected root command use to start with 'jsonator', got %s", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("Expected root command to have descriptions")
	}

	for _, name := range []string{"version", "config", "watch"} {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected subcommand %q to be registered", name)
		}
	}
}

func TestFormat_RewritesFile(t *testing.T) {
	path := writeJSON(t, t.TempDir(), "a.json", `{"key": "value"}`)

	res := execute(t, path)
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "{\n    \"key\": \"value\"\n}\n", readJSON(t, path))
	assert.Contains(t, res.stderr, "reformatted "+path+"\n")
	assert.Contains(t, res.stderr, "1 file reformatted.\n")
	assert.Empty(t, res.stdout)
}

func TestFormat_CheckLeavesFile(t *testing.T) {
	const original = `{"key": "value"}`
	path := writeJSON(t, t.TempDir(), "a.json", original)

	res := execute(t, "--check", path)
	assert.Equal(t, 1, res.code)
	assert.Equal(t, original, readJSON(t, path))
	assert.Contains(t, res.stderr, "would reformat "+path)
	assert.Contains(t, res.stderr, "1 file would be reformatted.")
}

func TestFormat_AlreadyFormatted(t *testing.T) {
	path := writeJSON(t, t.TempDir(), "a.json", "{\n    \"key\": \"value\"\n}\n")

	res := execute(t, "--check", path)
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "1 file would be left unchanged.\n", res.stderr)

	res = execute(t, "--check", "-v", path)
	assert.Contains(t, res.stderr, path+" already well formatted, good job.\n")
}

func TestFormat_SortKeysCheck(t *testing.T) {
	path := writeJSON(t, t.TempDir(), "a.json", `{"key2":"v","key1":"w"}`)

	res := execute(t, "--check", "--sort-keys", path)
	assert.Equal(t, 1, res.code)
}

func TestFormat_MissingPath(t *testing.T) {
	res := execute(t, filepath.Join(t.TempDir(), "does_not_exist.json"))
	assert.Equal(t, 122, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "file not found")
}

func TestFormat_ParseFailure(t *testing.T) {
	dir := t.TempDir()
	broken := writeJSON(t, dir, "broken.json", `{"`)
	writeJSON(t, dir, "good.json", `[1]`)

	res := execute(t, dir)
	assert.Equal(t, 123, res.code)
	assert.Contains(t, res.stderr, "error: cannot format "+broken+": unexpected end of JSON input\n")
	assert.Contains(t, res.stderr, "1 file reformatted, 1 file failed to reformat.\n")
	assert.Equal(t, "[\n    1\n]\n", readJSON(t, filepath.Join(dir, "good.json")))
}

func TestFormat_Diff(t *testing.T) {
	path := writeJSON(t, t.TempDir(), "a.json", `{"key": "value"}`)

	res := execute(t, "--check", "--diff", path)
	assert.Equal(t, 1, res.code)
	want := "--- a.json\n" +
		"+++ formatted file\n" +
		"@@ -1 +1,3 @@\n" +
		"-{\"key\": \"value\"}\n" +
		"\\ No newline at end of file\n" +
		"+{\n" +
		"+    \"key\": \"value\"\n" +
		"+}\n"
	assert.Equal(t, want, res.stdout)
}

func TestFormat_LayoutFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"compact sorted", []string{"--compact", "--sort-keys"}, "{\"a\":1,\"b\":[1,2]}\n"},
		{"no indent", []string{"--no-indent"}, "{\"b\": [1, 2], \"a\": 1}\n"},
		{"tab", []string{"--tab"}, "{\n\t\"b\": [\n\t\t1,\n\t\t2\n\t],\n\t\"a\": 1\n}\n"},
		{"indent 1", []string{"--indent", "1"}, "{\n \"b\": [\n  1,\n  2\n ],\n \"a\": 1\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeJSON(t, t.TempDir(), "a.json", `{"b":[1,2],"a":1}`)

			res := execute(t, append(tt.args, path)...)
			require.Equal(t, 0, res.code, res.stderr)
			assert.Equal(t, tt.want, readJSON(t, path))
		})
	}
}

func TestFormat_EnsureASCII(t *testing.T) {
	dir := t.TempDir()
	escaped := writeJSON(t, dir, "escaped.json", `["é"]`)
	raw := writeJSON(t, dir, "raw.json", `["é"]`)

	require.Equal(t, 0, execute(t, "--compact", escaped).code)
	require.Equal(t, 0, execute(t, "--compact", "--no-ensure-ascii", raw).code)

	assert.Equal(t, "[\"\\u00e9\"]\n", readJSON(t, escaped))
	assert.Equal(t, "[\"é\"]\n", readJSON(t, raw))
}

func TestFormat_Recursive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	writeJSON(t, dir, "top.json", `[]`)
	nested := writeJSON(t, filepath.Join(dir, "sub"), "nested.json", `[1]`)

	res := execute(t, "--check", dir)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "1 file would be reformatted.")

	res = execute(t, "--check", "-r", "-w", "1", dir)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "2 files would be reformatted.")
	assert.Equal(t, "[1]", readJSON(t, nested))
}

func TestFormat_Quiet(t *testing.T) {
	path := writeJSON(t, t.TempDir(), "a.json", `{}`)

	res := execute(t, "-q", path)
	assert.Equal(t, 0, res.code)
	assert.Empty(t, res.stderr)
	assert.Equal(t, "{}\n", readJSON(t, path))
}

func TestFormat_ProgressWithoutTerminal(t *testing.T) {
	path := writeJSON(t, t.TempDir(), "a.json", `{}`)

	res := execute(t, "--progress", path)
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "reformatted "+path+"\n1 file reformatted.\n", res.stderr)
}

func TestFormat_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeJSON(t, dir, "jsonator.toml", "[format]\nsort_keys = true\ncompact = true\n")
	path := writeJSON(t, dir, "a.json", `{"b":1,"a":2}`)

	require.Equal(t, 0, execute(t, "--config", cfgPath, path).code)
	assert.Equal(t, "{\"a\":2,\"b\":1}\n", readJSON(t, path))

	// A layout flag replaces the layout from the file.
	require.Equal(t, 0, execute(t, "--config", cfgPath, "--indent", "2", path).code)
	assert.Equal(t, "{\n  \"a\": 2,\n  \"b\": 1\n}\n", readJSON(t, path))
}

func TestFormat_Environment(t *testing.T) {
	t.Setenv("JSONATOR_FORMAT_COMPACT", "true")
	path := writeJSON(t, t.TempDir(), "a.json", `[1, 2]`)

	require.Equal(t, 0, execute(t, path).code)
	assert.Equal(t, "[1,2]\n", readJSON(t, path))
}

func TestFormat_LogFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "run.log")
	t.Setenv("JSONATOR_LOGGING_OUTPUT", "file")
	t.Setenv("JSONATOR_LOGGING_FILE_PATH", logPath)
	path := writeJSON(t, dir, "broken.json", `{"`)

	res := execute(t, path)
	assert.Equal(t, 123, res.code)
	assert.NotContains(t, res.stderr, "cannot format")

	// Both runs append to the same file.
	execute(t, path)
	logged := readJSON(t, logPath)
	assert.Equal(t, 2, strings.Count(logged, "error: cannot format "+path+": unexpected end of JSON input\n"))
}

func TestUsageErrors(t *testing.T) {
	path := writeJSON(t, t.TempDir(), "a.json", `{}`)

	tests := []struct {
		name string
		args []string
	}{
		{"no path", nil},
		{"two paths", []string{path, path}},
		{"unknown flag", []string{"--frobnicate", path}},
		{"exclusive layouts", []string{"--tab", "--compact", path}},
		{"verbose and quiet", []string{"-v", "-q", path}},
		{"negative indent", []string{"--indent", "-1", path}},
		{"bad log format", []string{"--log-format", "xml", path}},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "none.toml"), path}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, tt.args...)
			assert.Equal(t, 2, res.code)
			assert.Contains(t, res.stderr, "error: ")
		})
	}
	assert.Equal(t, "{}", readJSON(t, path))
}

func TestVersionCommand(t *testing.T) {
	res := execute(t, "version")
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "jsonator dev (commit none, built unknown)\n", res.stdout)
}

func TestConfigCommand(t *testing.T) {
	res := execute(t, "config", "--sort-keys", "--tab")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "sort_keys = true")
	assert.Contains(t, res.stdout, "tab = true")

	res = execute(t, "config", "-o", "yaml", "-q")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "level: error")
	assert.Contains(t, res.stdout, "quiet: true")

	res = execute(t, "config", "-o", "ini")
	assert.Equal(t, 2, res.code)
}

func TestWatchCommand_MissingPath(t *testing.T) {
	res := execute(t, "watch", filepath.Join(t.TempDir(), "nope"))
	assert.Equal(t, 122, res.code)
}

func writeJSON(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func readJSON(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
