package jobs

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ripper/internal/engine"
	"ripper/internal/progress"
	"ripper/internal/registry"
)

type fakeEngine struct {
	payload      []byte
	events       []engine.ProgressEvent
	downloadErr  error
	writePartial bool
	panicMsg     string
}

func (f *fakeEngine) ExtractMetadata(ctx context.Context, url string) (*engine.Metadata, error) {
	return &engine.Metadata{Title: "video"}, nil
}

func (f *fakeEngine) Download(ctx context.Context, url, outputBase string, progressFn engine.ProgressFunc) error {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	for _, ev := range f.events {
		if progressFn != nil {
			progressFn(ev)
		}
	}
	if f.downloadErr != nil {
		if f.writePartial {
			_ = os.WriteFile(outputBase+".part", []byte("partial"), 0o644)
		}
		return f.downloadErr
	}
	return os.WriteFile(outputBase+".mp3", f.payload, 0o644)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitForTerminal(t *testing.T, reg *registry.Registry, id string) registry.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := reg.Get(id)
		if !ok {
			t.Fatalf("job %s disappeared before reaching a terminal state", id)
		}
		if job.State.Terminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", id)
	return registry.Job{}
}

func newRunner(t *testing.T, eng engine.Engine) (*Runner, *registry.Registry, string) {
	t.Helper()
	reg := registry.New()
	dir := t.TempDir()
	sweeper := NewSweeper(reg, time.Hour, testLogger())
	runner := NewRunner(reg, eng, sweeper, dir, "http://localhost:5000", testLogger())
	return runner, reg, dir
}

func createJob(t *testing.T, reg *registry.Registry, id string) {
	t.Helper()
	err := reg.Create(registry.Job{
		ID:        id,
		State:     registry.StateStarting,
		Progress:  progress.MsgPreparing,
		SourceURL: "https://example.com/watch?v=1",
		Filename:  "video.mp3",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
}

func TestRunnerSuccess(t *testing.T) {
	payload := []byte("mp3 bytes")
	eng := &fakeEngine{payload: payload}
	runner, reg, dir := newRunner(t, eng)
	createJob(t, reg, "ok")

	runner.Launch("ok")
	job := waitForTerminal(t, reg, "ok")

	if job.State != registry.StateComplete {
		t.Fatalf("expected complete, got %s (%s)", job.State, job.Progress)
	}
	if job.Progress != progress.MsgComplete {
		t.Fatalf("unexpected message: %q", job.Progress)
	}
	if job.DownloadURL != "http://localhost:5000/get-file/ok" {
		t.Fatalf("unexpected download url: %q", job.DownloadURL)
	}
	if job.ArtifactPath != filepath.Join(dir, "ok.mp3") {
		t.Fatalf("unexpected artifact path: %q", job.ArtifactPath)
	}
	data, err := os.ReadFile(job.ArtifactPath)
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatal("artifact bytes differ from engine output")
	}
	if !runner.sweeper.Pending("ok") {
		t.Fatal("sweep not scheduled after completion")
	}
}

func TestRunnerAppliesProgressEvents(t *testing.T) {
	eng := &fakeEngine{
		payload: []byte("x"),
		events: []engine.ProgressEvent{
			{Phase: engine.PhaseDownloading, Percent: 25, TotalBytes: 10 * 1024 * 1024, Speed: "1.0 MiB/s", ETA: 30 * time.Second},
			{Phase: engine.PhaseFinished},
		},
	}
	runner, reg, _ := newRunner(t, eng)
	createJob(t, reg, "prog")

	runner.Launch("prog")
	job := waitForTerminal(t, reg, "prog")

	if job.State != registry.StateComplete {
		t.Fatalf("expected complete, got %s", job.State)
	}
}

func TestRunnerFailureRemovesPartialFile(t *testing.T) {
	eng := &fakeEngine{downloadErr: errors.New("network unreachable"), writePartial: true}
	runner, reg, dir := newRunner(t, eng)
	createJob(t, reg, "bad")

	runner.Launch("bad")
	job := waitForTerminal(t, reg, "bad")

	if job.State != registry.StateError {
		t.Fatalf("expected error state, got %s", job.State)
	}
	if !strings.HasPrefix(job.Progress, progress.ErrorPrefix) {
		t.Fatalf("error message missing prefix: %q", job.Progress)
	}
	if !strings.Contains(job.Progress, "network unreachable") {
		t.Fatalf("error message missing cause: %q", job.Progress)
	}
	if job.ArtifactPath != "" {
		t.Fatalf("artifact path must be cleared on failure, got %q", job.ArtifactPath)
	}

	partial := filepath.Join(dir, "bad.part")
	if _, err := os.Stat(partial); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("partial file not removed: %v", err)
	}
	if runner.sweeper.Pending("bad") {
		t.Fatal("error jobs must not be scheduled for sweeping")
	}
}

func TestRunnerPanicBecomesErrorState(t *testing.T) {
	eng := &fakeEngine{panicMsg: "boom"}
	runner, reg, _ := newRunner(t, eng)
	createJob(t, reg, "panic")

	runner.Launch("panic")
	job := waitForTerminal(t, reg, "panic")

	if job.State != registry.StateError {
		t.Fatalf("expected error state, got %s", job.State)
	}
	if !strings.Contains(job.Progress, "boom") {
		t.Fatalf("panic value missing from message: %q", job.Progress)
	}
}

func TestRunnerStateIsMonotonic(t *testing.T) {
	eng := &fakeEngine{payload: []byte("x")}
	runner, reg, _ := newRunner(t, eng)
	createJob(t, reg, "mono")

	runner.Launch("mono")
	job := waitForTerminal(t, reg, "mono")
	if job.State != registry.StateComplete {
		t.Fatalf("expected complete, got %s", job.State)
	}

	// Nothing may move a terminal job backwards afterwards.
	time.Sleep(20 * time.Millisecond)
	again, _ := reg.Get("mono")
	if again.State != registry.StateComplete {
		t.Fatalf("terminal state changed: %s", again.State)
	}
}
