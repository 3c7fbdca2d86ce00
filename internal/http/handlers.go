package http

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ripper/internal/config"
	"ripper/internal/credentials"
	"ripper/internal/engine"
	"ripper/internal/jobs"
	"ripper/internal/metrics"
	"ripper/internal/progress"
	"ripper/internal/registry"
	"ripper/internal/sanitize"
)

const indexHTML = `<!doctype html>
<html>
    <head><title>Music Ripper</title></head>
    <body>
        <h1>Use the Extension for conversions</h1>
    </body>
</html>
`

func indexHandler(c *fiber.Ctx) error {
	c.Type("html")
	return c.SendString(indexHTML)
}

// createDownloadHandler validates the request, resolves the display
// filename via a synchronous metadata lookup, inserts the starting
// record, and hands the job to the runner. It never waits for the
// download itself.
func createDownloadHandler(c *fiber.Ctx) error {
	var req DownloadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Bad request, malformed JSON",
		})
	}

	if strings.TrimSpace(req.URL) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Source URL is required",
		})
	}

	cfg := c.Locals("config").(*config.Config)
	reg := c.Locals("registry").(*registry.Registry)
	runner := c.Locals("runner").(*jobs.Runner)
	eng := c.Locals("engine").(engine.Engine)

	// Metadata lookup is the only synchronous engine call; a failure
	// here is a create-time error and no job is recorded.
	ctx, cancel := context.WithTimeout(c.Context(), time.Duration(cfg.Engine.MetadataTimeoutMs)*time.Millisecond)
	defer cancel()

	meta, err := eng.ExtractMetadata(ctx, req.URL)
	if err != nil {
		metrics.RecordJob("rejected")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Error processing video: " + engine.RewriteAuthHint(err.Error()),
		})
	}

	base := sanitize.Filename(strings.TrimSpace(req.Filename))
	if base == "" {
		base = sanitize.Filename(meta.Title)
	}
	if base == "" {
		base = "video"
	}
	filename := base + ".mp3"

	id := uuid.New().String()
	err = reg.Create(registry.Job{
		ID:        id,
		State:     registry.StateStarting,
		Progress:  progress.MsgPreparing,
		SourceURL: req.URL,
		Filename:  filename,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: fmt.Sprintf("Error processing video: %v", err),
		})
	}

	metrics.RecordJob("started")
	runner.Launch(id)

	return c.JSON(DownloadStartedResponse{
		DownloadID: id,
		Status:     "started",
	})
}

func progressHandler(c *fiber.Ctx) error {
	reg := c.Locals("registry").(*registry.Registry)

	job, ok := reg.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: "Download not found",
		})
	}

	resp := ProgressResponse{
		Status:   string(job.State),
		Progress: job.Progress,
	}
	if job.State == registry.StateComplete {
		resp.DownloadURL = job.DownloadURL
		resp.Filename = job.Filename
	}

	return c.JSON(resp)
}

// fileHandler streams the artifact of a completed job as an
// attachment. Anything but a complete job is indistinguishable from an
// unknown id.
func fileHandler(c *fiber.Ctx) error {
	reg := c.Locals("registry").(*registry.Registry)

	job, ok := reg.Get(c.Params("id"))
	if !ok || job.State != registry.StateComplete {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: "Download not found or not complete",
		})
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", job.Filename))
	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.SendFile(job.ArtifactPath)
}

func activeDownloadsHandler(c *fiber.Ctx) error {
	reg := c.Locals("registry").(*registry.Registry)

	active := reg.ListWhere(func(j registry.Job) bool {
		return !j.State.Terminal()
	})

	downloads := make([]ActiveDownload, 0, len(active))
	for _, job := range active {
		downloads = append(downloads, ActiveDownload{
			ID:       job.ID,
			Status:   string(job.State),
			Progress: job.Progress,
			Filename: job.Filename,
			URL:      job.SourceURL,
		})
	}

	return c.JSON(ActiveDownloadsResponse{Downloads: downloads})
}

func uploadCookiesHandler(c *fiber.Ctx) error {
	var req UploadCookiesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Bad request, malformed JSON",
		})
	}
	if len(req.Cookies) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "No cookies provided",
		})
	}

	creds := c.Locals("credentials").(*credentials.Store)
	if err := creds.Save(req.Cookies); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: fmt.Sprintf("Failed to store cookies: %v", err),
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"count":  len(req.Cookies),
	})
}
