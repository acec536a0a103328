package controllers

import "github.com/hlsget/hlsget/internal/domain"

type ParseRequest struct {
	URL string `json:"url"`
}

type DownloadRequest struct {
	M3U8URL   string                `json:"m3u8Url"`
	OutputDir string                `json:"outputDir"`
	Storage   *domain.StorageConfig `json:"storage"`
}

type ProcessRequest struct {
	URL       string                `json:"url"`
	OutputDir string                `json:"outputDir"`
	Storage   *domain.StorageConfig `json:"storage"`
}

type ParseResponse struct {
	Success bool     `json:"success"`
	Result  []string `json:"result"`
	Title   string   `json:"title,omitempty"`
}

type JobAcceptedResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Errmsg  string `json:"errmsg,omitempty"`
}
