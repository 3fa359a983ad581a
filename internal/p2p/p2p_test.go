package p2p_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zcomx/internal/p2p"
	"zcomx/internal/shellutil"
	"zcomx/internal/testsupport"
)

func TestNotify(t *testing.T) {
	transcript := filepath.Join(t.TempDir(), "calls.txt")
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("zc-p2p", `echo "$@" >> `+shellutil.Quote(transcript)+"\n"))
	notifier := p2p.NewNotifier(cfg, shellutil.Runner{})
	ctx := context.Background()

	if err := notifier.Notify(ctx, "/archive/cbz/My Book.cbz"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if err := notifier.NotifyDelete(ctx, "/archive/cbz/My Book.cbz"); err != nil {
		t.Fatalf("NotifyDelete: %v", err)
	}

	data, err := os.ReadFile(transcript)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 invocations, got %q", lines)
	}
	if lines[0] != "/archive/cbz/My Book.cbz" {
		t.Fatalf("notify args = %q", lines[0])
	}
	if lines[1] != "--delete /archive/cbz/My Book.cbz" {
		t.Fatalf("delete args = %q", lines[1])
	}
}

func TestNotifyFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("zc-p2p", "echo network down >&2\nexit 1\n"))
	notifier := p2p.NewNotifier(cfg, shellutil.Runner{})

	err := notifier.Notify(context.Background(), "/archive/cbz/x.cbz")
	if !errors.Is(err, p2p.ErrNotify) {
		t.Fatalf("expected ErrNotify, got %v", err)
	}
	if !strings.Contains(err.Error(), "network down") {
		t.Fatalf("error must carry stderr: %v", err)
	}
}
