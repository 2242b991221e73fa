package main

import (
	"os"
	"strings"
	"testing"
)

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	content := strings.Join([]string{
		"2026-01-02T15:04:05Z INFO server: request complete request_id=aaa status=200",
		"2026-01-02T15:04:06Z INFO library: loan created request_id=bbb loan_id=1",
		"2026-01-02T15:04:07Z INFO server: request complete request_id=bbb status=200",
	}, "\n") + "\n"
	if err := os.MkdirAll(env.cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	if err := os.WriteFile(env.cfg.LogPath(), []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out := mustRunCLI(t, env, "logs", "-n", "1")
	if strings.Count(out, "\n") != 1 || !strings.Contains(out, "15:04:07") {
		t.Fatalf("expected only the last line, got %q", out)
	}

	out = mustRunCLI(t, env, "logs", "--request", "bbb")
	if strings.Count(out, "\n") != 2 || strings.Contains(out, "aaa") {
		t.Fatalf("expected the two bbb lines, got %q", out)
	}
}
