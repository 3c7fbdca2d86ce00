// Package jobs drives each conversion from creation to its terminal
// state and owns delayed cleanup of completed artifacts.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ripper/internal/engine"
	"ripper/internal/metrics"
	"ripper/internal/progress"
	"ripper/internal/registry"
)

// Runner executes conversions, one goroutine per job. Jobs share no
// mutable state with each other except through the registry.
type Runner struct {
	reg     *registry.Registry
	eng     engine.Engine
	sweeper *Sweeper
	tempDir string
	baseURL string
	logger  *slog.Logger
}

func NewRunner(reg *registry.Registry, eng engine.Engine, sweeper *Sweeper, tempDir, baseURL string, logger *slog.Logger) *Runner {
	return &Runner{
		reg:     reg,
		eng:     eng,
		sweeper: sweeper,
		tempDir: tempDir,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Launch starts the conversion for id in the background and returns
// immediately. The job must already exist in the registry in the
// starting state.
func (r *Runner) Launch(id string) {
	go r.run(context.Background(), id)
}

func (r *Runner) run(ctx context.Context, id string) {
	outputBase := filepath.Join(r.tempDir, id)
	artifact := outputBase + ".mp3"

	// A panic anywhere in the engine or our own code must end as an
	// error state on this job, never as a process fault.
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("job panicked", "job_id", id, "panic", rec)
			r.fail(id, outputBase, fmt.Sprintf("%v", rec))
		}
	}()

	job, ok := r.reg.Get(id)
	if !ok {
		return
	}

	err := r.reg.Update(id, func(j *registry.Job) {
		j.ArtifactPath = artifact
		j.State = registry.StateDownloading
	})
	if err != nil {
		return
	}

	translator := progress.NewTranslator(r.reg, id)

	if err := r.eng.Download(ctx, job.SourceURL, outputBase, translator.Handle); err != nil {
		r.logger.Error("download failed", "job_id", id, "url", job.SourceURL, "error", err)
		r.fail(id, outputBase, err.Error())
		return
	}

	_ = r.reg.Update(id, func(j *registry.Job) {
		j.State = registry.StateComplete
		j.Progress = progress.MsgComplete
		j.DownloadURL = r.downloadURL(id)
	})
	metrics.RecordJob("complete")

	r.logger.Info("job complete", "job_id", id, "artifact", artifact)
	r.sweeper.Schedule(id)
}

// fail removes any partial output and marks the job as errored. The
// registry must never reference a partial artifact.
func (r *Runner) fail(id, outputBase, msg string) {
	if partials, err := filepath.Glob(outputBase + "*"); err == nil {
		for _, p := range partials {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				r.logger.Error("failed to remove partial file", "job_id", id, "path", p, "error", err)
			}
		}
	}

	_ = r.reg.Update(id, func(j *registry.Job) {
		j.State = registry.StateError
		j.Progress = progress.ErrorPrefix + msg
		j.ArtifactPath = ""
	})
	metrics.RecordJob("error")
}

func (r *Runner) downloadURL(id string) string {
	base := strings.TrimSuffix(r.baseURL, "/")
	return base + "/get-file/" + id
}
