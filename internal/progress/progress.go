// Package progress turns raw engine progress events into the
// human-readable status strings served on the progress endpoint.
package progress

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ripper/internal/engine"
	"ripper/internal/registry"
)

// Status messages stored on the job record. These are part of the API
// surface polled by clients, so they stay stable.
const (
	MsgPreparing    = "Preparing download..."
	MsgInitializing = "Initializing download..."
	MsgProcessing   = "Processing audio..."
	MsgComplete     = "Download complete!"
	ErrorPrefix     = "Error: "
)

var ansiEscape = regexp.MustCompile(`\x1B(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)

// StripANSI removes terminal escape sequences the engine may embed in
// its output.
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// Translator adapts progress events for a single job into registry
// updates. It does no I/O beyond the atomic registry write, so it
// never stalls the engine's callback.
type Translator struct {
	reg *registry.Registry
	id  string
}

// NewTranslator binds a translator to a job and records that the
// download hook is attached.
func NewTranslator(reg *registry.Registry, id string) *Translator {
	_ = reg.Update(id, func(j *registry.Job) {
		j.Progress = MsgInitializing
	})
	return &Translator{reg: reg, id: id}
}

// Handle processes one engine event. Events outside the downloading
// and finished phases are ignored.
func (t *Translator) Handle(ev engine.ProgressEvent) {
	var msg string
	switch ev.Phase {
	case engine.PhaseDownloading:
		msg = StripANSI(FormatDownloading(ev))
	case engine.PhaseFinished:
		msg = MsgProcessing
	default:
		return
	}

	_ = t.reg.Update(t.id, func(j *registry.Job) {
		j.Progress = msg
	})
}

// FormatDownloading renders a downloading event as
// "<percent>, <size> at <speed> ETA <eta>". The size segment is
// omitted when the total byte count is unknown.
func FormatDownloading(ev engine.ProgressEvent) string {
	percent := fmt.Sprintf("%.1f%%", ev.Percent)

	sizeStr := ""
	if ev.TotalBytes > 0 {
		sizeStr = FormatMiB(ev.TotalBytes)
	}

	speed := ev.Speed
	if speed == "" {
		speed = "0 KiB/s"
	}

	return fmt.Sprintf("%s, %s at %s ETA %s", percent, sizeStr, speed, FormatETA(ev.ETA))
}

// FormatMiB renders a byte count in MiB rounded to two decimal places,
// keeping at least one fractional digit ("10.0 MiB", "10.25 MiB").
func FormatMiB(totalBytes int64) string {
	mib := float64(totalBytes) / (1024 * 1024)
	rounded := math.Round(mib*100) / 100
	s := strconv.FormatFloat(rounded, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + " MiB"
}

// FormatETA renders a duration as mm:ss (or hh:mm:ss past an hour);
// "unknown" when the engine has no estimate.
func FormatETA(eta time.Duration) string {
	secs := int(eta.Seconds())
	if secs <= 0 {
		return "unknown"
	}
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
