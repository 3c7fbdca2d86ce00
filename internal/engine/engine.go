package engine

import (
	"context"
	"time"
)

// Metadata is the subset of source metadata the service needs up
// front: a title to derive the display filename from.
type Metadata struct {
	Title string
}

// ProgressPhase mirrors the phases the underlying downloader reports.
type ProgressPhase string

const (
	PhaseDownloading ProgressPhase = "downloading"
	PhaseFinished    ProgressPhase = "finished"
)

// ProgressEvent is one raw progress report from the engine. TotalBytes
// is zero when the source does not advertise a size. Speed is the
// engine's human-readable rate and may be empty early in a transfer.
type ProgressEvent struct {
	Phase           ProgressPhase
	Percent         float64
	DownloadedBytes int64
	TotalBytes      int64
	Speed           string
	ETA             time.Duration
}

// ProgressFunc receives progress events during a download. It is
// invoked from the engine's own goroutine and must return quickly.
type ProgressFunc func(ProgressEvent)

// CookieSource supplies an optional cookie file for authenticated
// sources. Ok is false when no credentials are available.
type CookieSource interface {
	CookieFile() (path string, ok bool)
}

// Engine fetches a source URL and transcodes its audio track. The
// output lands at outputBase plus the audio extension chosen by the
// post-processor (".mp3").
type Engine interface {
	ExtractMetadata(ctx context.Context, url string) (*Metadata, error)
	Download(ctx context.Context, url, outputBase string, progress ProgressFunc) error
}
