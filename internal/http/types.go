package http

import "ripper/internal/credentials"

// DownloadRequest is the body of POST /download-with-progress.
type DownloadRequest struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// DownloadStartedResponse acknowledges an accepted conversion.
type DownloadStartedResponse struct {
	DownloadID string `json:"download_id"`
	Status     string `json:"status"`
}

// ProgressResponse is the body of GET /progress/{id}. DownloadURL and
// Filename are present only once the job is complete.
type ProgressResponse struct {
	Status      string `json:"status"`
	Progress    string `json:"progress"`
	DownloadURL string `json:"download_url,omitempty"`
	Filename    string `json:"filename,omitempty"`
}

// ActiveDownload is one entry of GET /active-downloads.
type ActiveDownload struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Progress string `json:"progress"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type ActiveDownloadsResponse struct {
	Downloads []ActiveDownload `json:"downloads"`
}

// UploadCookiesRequest is the body the companion extension sends to
// POST /upload-cookies.
type UploadCookiesRequest struct {
	Cookies []credentials.Cookie `json:"cookies"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
