package model

// DownloadTask is a matched remote file and the local path it is written to
type DownloadTask struct {
	URL       string // Absolute file URL
	LocalPath string // Target path inside the output directory
}

// DownloadStatus is the outcome of a single download attempt
type DownloadStatus int

const (
	DownloadFailed DownloadStatus = iota
	DownloadCompleted
	DownloadSkipped
)

func (s DownloadStatus) String() string {
	switch s {
	case DownloadCompleted:
		return "downloaded"
	case DownloadSkipped:
		return "skipped"
	default:
		return "failed"
	}
}
