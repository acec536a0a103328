package domain

// SegmentFailure records one segment that could not be fetched.
type SegmentFailure struct {
	Index  int    `json:"index"`
	URL    string `json:"url"`
	Reason string `json:"error"`
}

// DownloadResult is the immutable outcome of one pipeline run.
type DownloadResult struct {
	Succeeded int `json:"downloaded"`
	Total     int `json:"total"`
	Failed    int `json:"failed"`

	// OutputFile is set when at least one segment succeeded.
	OutputFile string `json:"outputFile,omitempty"`

	// Failures is nil (absent on the wire) when everything succeeded,
	// ordered by segment index otherwise.
	Failures []SegmentFailure `json:"failedDownloads,omitempty"`
}
