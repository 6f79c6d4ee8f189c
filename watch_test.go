package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/chazu/twirl/pkg/volume"
)

type reload struct {
	vol *volume.Volume
	err error
}

// startWatch runs app.Watch on path and returns the delivered reloads and a
// stop function that cancels the watch and waits for it to return.
func startWatch(t *testing.T, path string) (<-chan reload, func()) {
	t.Helper()
	app := NewApp(testConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan reload, 1)
	done := make(chan error, 1)
	go func() {
		done <- app.Watch(ctx, path, true, func(v *volume.Volume, err error) {
			select {
			case got <- reload{v, err}:
			default:
			}
		})
	}()
	stop := func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Watch returned %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Watch did not return after cancel")
		}
	}
	return got, stop
}

// rewriteUntilReload keeps rewriting path until the watcher delivers. The
// watcher starts asynchronously, so an early write may go unseen.
func rewriteUntilReload(t *testing.T, path, source string, got <-chan reload) reload {
	t.Helper()
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(250 * time.Millisecond)
	defer tick.Stop()
	for {
		if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
			t.Fatalf("rewrite script: %v", err)
		}
		select {
		case r := <-got:
			return r
		case <-deadline:
			t.Fatal("no reload delivered")
		case <-tick.C:
		}
	}
}

func TestWatchReloads(t *testing.T) {
	path := writeScript(t, "(animate (square :side 4) (rotation :angle 90))")
	got, stop := startWatch(t, path)
	defer stop()

	r := rewriteUntilReload(t, path, "(default-depth 6)\n(animate (square :side 4) (rotation :angle 90))", got)
	if r.err != nil {
		t.Fatalf("reload error: %v", r.err)
	}
	if r.vol == nil || r.vol.Len() != 7 {
		t.Fatalf("reloaded volume = %v, want 7 slices from the edited script", r.vol)
	}
	if r.vol.Count() == 0 {
		t.Error("reloaded volume is empty")
	}
}

func TestWatchReportsBrokenScript(t *testing.T) {
	path := writeScript(t, "(animate (square :side 4) (rotation :angle 90))")
	got, stop := startWatch(t, path)
	defer stop()

	r := rewriteUntilReload(t, path, "(animate (no-such-shape 3) (rotation :angle 90))", got)
	if r.err == nil {
		t.Fatal("broken script reloaded without error")
	}
	if r.vol != nil {
		t.Errorf("broken script delivered a volume with %d slices", r.vol.Len())
	}
}
