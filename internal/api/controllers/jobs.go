package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v5"

	"github.com/hlsget/hlsget/internal/app"
	"github.com/hlsget/hlsget/internal/domain"
)

type JobsController struct {
	App *app.Context
}

func (ctrl *JobsController) HandleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Service is running",
	})
}

// HandleParse resolves a media page to its playlist URLs synchronously.
func (ctrl *JobsController) HandleParse(c *echo.Context) error {
	var req ParseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.CodeInvalidInput, Errmsg: err.Error()})
	}
	if req.URL == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.CodeInvalidInput, Errmsg: "Missing required parameter: url"})
	}

	urls, title, err := ctrl.App.Pages.Resolve(c.Request().Context(), req.URL)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.CodeOf(err), Errmsg: err.Error()})
	}

	return c.JSON(http.StatusOK, ParseResponse{Success: true, Result: urls, Title: title})
}

// HandleDownload accepts a playlist download job. Only missing-input
// validation is synchronous; everything else surfaces through the job.
func (ctrl *JobsController) HandleDownload(c *echo.Context) error {
	var req DownloadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.CodeInvalidInput, Errmsg: err.Error()})
	}
	if req.M3U8URL == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.CodeInvalidInput, Errmsg: "Missing required parameter: m3u8Url"})
	}

	return ctrl.accept(c, domain.JobInputs{
		SourceURL: req.M3U8URL,
		OutputDir: req.OutputDir,
		Storage:   req.Storage,
	})
}

// HandleProcess accepts a combined parse+download job from a page URL.
func (ctrl *JobsController) HandleProcess(c *echo.Context) error {
	var req ProcessRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.CodeInvalidInput, Errmsg: err.Error()})
	}
	if req.URL == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.CodeInvalidInput, Errmsg: "Missing required parameter: url"})
	}

	return ctrl.accept(c, domain.JobInputs{
		SourceURL: req.URL,
		FromPage:  true,
		OutputDir: req.OutputDir,
		Storage:   req.Storage,
	})
}

func (ctrl *JobsController) accept(c *echo.Context, inputs domain.JobInputs) error {
	j := ctrl.App.Jobs.Create(inputs)
	ctrl.App.Runner.Launch(j)
	return c.JSON(http.StatusAccepted, JobAcceptedResponse{Success: true, JobID: j.ID})
}

func (ctrl *JobsController) HandleListJobs(c *echo.Context) error {
	return c.JSON(http.StatusOK, ctrl.App.Jobs.All())
}

func (ctrl *JobsController) HandleJobStatus(c *echo.Context) error {
	view, ok := ctrl.App.Jobs.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.CodeNotFound, Errmsg: "unknown job"})
	}
	return c.JSON(http.StatusOK, view)
}

func (ctrl *JobsController) HandleCancelJob(c *echo.Context) error {
	id := c.Param("id")
	if ctrl.App.Jobs.Cancel(id) {
		return c.JSON(http.StatusOK, map[string]any{"success": true, "jobId": id})
	}

	if _, exists := ctrl.App.Jobs.Get(id); exists {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: domain.CodeInvalidInput, Errmsg: "job already finished"})
	}
	return c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.CodeNotFound, Errmsg: "unknown job"})
}

func (ctrl *JobsController) HandleHistory(c *echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	entries, err := ctrl.App.History.Recent(c.Request().Context(), limit)
	if err != nil {
		ctrl.App.Logger.Error("History query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: domain.CodeInternal, Errmsg: "failed to read history"})
	}
	return c.JSON(http.StatusOK, entries)
}

// HandleFileDownload redeems a single-use token and streams the artifact.
// A claimed or unknown token is a terminal not-found: tokens never
// re-resolve.
func (ctrl *JobsController) HandleFileDownload(c *echo.Context) error {
	token := c.Param("token")

	path, ok := ctrl.App.Registry.Claim(token)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.CodeNotFound, Errmsg: "unknown or expired download token"})
	}

	if _, err := os.Stat(path); err != nil {
		ctrl.App.Logger.Warn("Token %s resolved to missing file %s", token, path)
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.CodeNotFound, Errmsg: "file no longer available"})
	}

	return c.Attachment(path, filepath.Base(path))
}
