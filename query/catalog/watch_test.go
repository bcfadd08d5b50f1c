package catalog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dhamidi/filterq/query/complete"
)

func TestWatcherReloads(t *testing.T) {
	path := writeFile(t, "catalog.yaml", "keys:\n  - name: status\n")

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan complete.Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(cfg complete.Config) {
			select {
			case changes <- cfg:
			default:
			}
		})
	}()

	if err := os.WriteFile(path, []byte("keys:\n  - name: status\n  - name: role\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// A write may be seen half done, so wait for the final content.
	timeout := time.After(5 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case cfg := <-changes:
			_, reloaded = cfg.Key("role")
		case <-timeout:
			t.Fatal("no reload with the new key after write")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestWatcherSkipsInvalidCatalog(t *testing.T) {
	path := writeFile(t, "catalog.json", `{"keys":[]}`)

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan complete.Config, 4)
	go w.Run(ctx, func(cfg complete.Config) {
		select {
		case changes <- cfg:
		default:
		}
	})

	if err := os.WriteFile(path, []byte(`{"keys":`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	select {
	case cfg := <-changes:
		t.Fatalf("invalid catalog was delivered: %+v", cfg)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestNewWatcherRejectsUnknownFormat(t *testing.T) {
	if _, err := NewWatcher(writeFile(t, "catalog.txt", "")); err == nil {
		t.Errorf("NewWatcher accepted a .txt catalog")
	}
}
