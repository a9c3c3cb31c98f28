package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.toml")
	if err := os.WriteFile(path, []byte("[log]\ndefault_level = \"EVENT\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(path, newApplyLogger(t), WithDebounce(50*time.Millisecond))
	reloaded := make(chan *Config, 1)
	w.OnReload(func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})

	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("[log]\ndefault_level = \"DEBUG\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Log.DefaultLevel != "DEBUG" {
			t.Errorf("reloaded default_level = %q, want DEBUG", cfg.Log.DefaultLevel)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reload handler never fired")
	}
}

func TestWatcherLoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.toml")
	if err := os.WriteFile(path, []byte("[log]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	errs := make(chan error, 1)
	w := NewWatcher(path, newApplyLogger(t),
		WithDebounce(50*time.Millisecond),
		WithErrorHandler(func(err error) {
			select {
			case errs <- err:
			default:
			}
		}))
	reloaded := make(chan struct{}, 1)
	w.OnReload(func(*Config) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})

	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("[log\nbroken"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-errs:
	case <-reloaded:
		t.Fatal("handler notified with unparseable config")
	case <-time.After(5 * time.Second):
		t.Fatal("error handler never fired")
	}
}

func TestWatcherUnsubscribe(t *testing.T) {
	w := NewWatcher("unused", newApplyLogger(t))
	called := false
	unsub := w.OnReload(func(*Config) { called = true })
	unsub()

	// Drive notification directly; the file is never watched here.
	path := filepath.Join(t.TempDir(), "log.toml")
	if err := os.WriteFile(path, []byte("[log]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w.path = path
	w.loadAndNotify()

	if called {
		t.Error("unsubscribed handler was called")
	}
}
