package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dayreel/internal/session"
	"dayreel/internal/timeline"
)

type cliTestEnv struct {
	configPath string
	sessionDir string
	libraryDir string
}

func setupCLITestEnv(t *testing.T) cliTestEnv {
	t.Helper()

	root := t.TempDir()
	t.Setenv("HOME", root)
	env := cliTestEnv{
		configPath: filepath.Join(root, "config.toml"),
		sessionDir: filepath.Join(root, "sessions"),
		libraryDir: filepath.Join(root, "library"),
	}

	contents := fmt.Sprintf(`[paths]
library_dir = %q
session_dir = %q
thumbnail_dir = %q
log_dir = %q

[logging]
format = "json"
level = "error"
`, env.libraryDir, env.sessionDir, filepath.Join(root, "thumbs"), filepath.Join(root, "logs"))

	if err := os.WriteFile(env.configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.libraryDir)

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, env.configPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, env.configPath)
	if err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
}

func TestSessionsCommandListsSavedDays(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"sessions"}, env.configPath)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	requireContains(t, out, "No saved sessions")

	if err := os.MkdirAll(env.sessionDir, 0o755); err != nil {
		t.Fatalf("create session dir: %v", err)
	}
	store := session.NewStore(env.sessionDir, nil)
	record := session.Record{
		Day:               timeline.Day("2026-08-30"),
		MuteOriginalAudio: true,
		Background:        &session.BackgroundRecord{Filename: "song.mp3", Volume: 0.4},
		Segments: []session.SegmentRecord{
			{Filename: "a.mp4", Order: 0, TrimDuration: 2},
			{Filename: "b.mp4", Order: 1, TrimDuration: 3},
		},
		SavedAt: time.Now(),
	}
	if err := store.Save(record); err != nil {
		t.Fatalf("save session: %v", err)
	}

	out, _, err = runCLI(t, []string{"sessions"}, env.configPath)
	if err != nil {
		t.Fatalf("sessions after save: %v", err)
	}
	requireContains(t, out, "2026-08-30")
	requireContains(t, out, "song.mp3")
	requireContains(t, out, "yes")
}

func TestClipsListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"clips", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("clips list: %v", err)
	}
	requireContains(t, out, "No exported clips yet")
}
