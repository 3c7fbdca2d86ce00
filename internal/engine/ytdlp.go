package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"ripper/internal/config"
)

const progressInterval = 500 * time.Millisecond

// YTDLPEngine implements Engine on top of the yt-dlp wrapper. All
// network identity options come from configuration and are passed
// through unchanged; cookies come from an optional CookieSource.
type YTDLPEngine struct {
	cfg     config.EngineConfig
	cookies CookieSource
}

func NewYTDLPEngine(cfg config.EngineConfig, cookies CookieSource) *YTDLPEngine {
	return &YTDLPEngine{cfg: cfg, cookies: cookies}
}

// Install fetches the yt-dlp binary if it is not already available.
// Called once at process start.
func Install(ctx context.Context) error {
	_, err := ytdlp.Install(ctx, nil)
	return err
}

func (e *YTDLPEngine) base() *ytdlp.Command {
	dl := ytdlp.New().
		Quiet().
		UserAgent(e.cfg.UserAgent).
		Referer(e.cfg.Referer).
		Retries(fmt.Sprintf("%d", e.cfg.Retries)).
		SocketTimeout(float64(e.cfg.SocketTimeoutSec))

	if e.cfg.GeoBypass {
		dl = dl.GeoBypass()
	}
	if e.cfg.NoCheckCertificate {
		dl = dl.NoCheckCertificates()
	}
	if e.cfg.ForceIPv4 {
		dl = dl.ForceIPv4()
	}
	if e.cookies != nil {
		if path, ok := e.cookies.CookieFile(); ok {
			dl = dl.Cookies(path)
		}
	} else if e.cfg.CookieFile != "" {
		dl = dl.Cookies(e.cfg.CookieFile)
	}
	return dl
}

// ExtractMetadata runs a metadata-only lookup, no download.
func (e *YTDLPEngine) ExtractMetadata(ctx context.Context, url string) (*Metadata, error) {
	result, err := e.base().SkipDownload().DumpJSON().Run(ctx, url)
	if err != nil {
		return nil, err
	}

	info, err := result.GetExtractedInfo()
	if err != nil {
		return nil, err
	}
	if len(info) == 0 {
		return nil, errors.New("no metadata returned for url")
	}

	meta := &Metadata{}
	if info[0].Title != nil {
		meta.Title = *info[0].Title
	}
	return meta, nil
}

// Download fetches the best audio stream and transcodes it to mp3 at
// outputBase (the post-processor appends the extension).
func (e *YTDLPEngine) Download(ctx context.Context, url, outputBase string, progress ProgressFunc) error {
	dl := e.base().
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat("mp3").
		AudioQuality("192K").
		IgnoreErrors().
		Output(outputBase)

	if progress != nil {
		dl = dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
			progress(translateUpdate(update))
		})
	}

	_, err := dl.Run(ctx, url)
	return err
}

// translateUpdate maps a wrapper progress update onto the event shape
// the progress translator consumes. Speed is derived from elapsed time
// because the wrapper does not surface yt-dlp's speed string.
func translateUpdate(update ytdlp.ProgressUpdate) ProgressEvent {
	ev := ProgressEvent{
		DownloadedBytes: int64(update.DownloadedBytes),
		TotalBytes:      int64(update.TotalBytes),
		ETA:             update.ETA(),
	}

	switch update.Status {
	case ytdlp.ProgressStatusFinished, ytdlp.ProgressStatusPostProcessing:
		ev.Phase = PhaseFinished
	case ytdlp.ProgressStatusDownloading:
		ev.Phase = PhaseDownloading
	default:
		ev.Phase = ProgressPhase(update.Status)
	}

	if update.TotalBytes > 0 {
		ev.Percent = float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
	}

	if !update.Started.IsZero() {
		elapsed := time.Since(update.Started)
		if elapsed.Seconds() > 0 && update.DownloadedBytes > 0 {
			bytesPerSecond := float64(update.DownloadedBytes) / elapsed.Seconds()
			ev.Speed = fmt.Sprintf("%.1f KiB/s", bytesPerSecond/1024)
		}
	}

	return ev
}
