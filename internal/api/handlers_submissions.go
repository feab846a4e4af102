// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/flockrl/internal/logging"
	"github.com/tomtom215/flockrl/internal/models"
)

// SubmissionList wraps the list view.
type SubmissionList struct {
	Submissions []models.SubmissionSummary `json:"submissions"`
}

// CreateSubmission handles POST /api/submissions (multipart: file plus
// title, name, tags, notes, envSet, rendererPreset).
//
// @Summary Upload a simulation run
// @Description Stores a .json or .log run payload with its descriptive fields and returns the new submission ID
// @Tags Submissions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Run payload (.json or .log)"
// @Param title formData string false "Display title"
// @Param name formData string false "Submitter name"
// @Param tags formData string false "Comma-separated tags"
// @Param notes formData string false "Free-form notes"
// @Param envSet formData string false "Environment set"
// @Param rendererPreset formData string false "Renderer preset"
// @Success 200 {object} APIResponse{data=models.CreateResult} "Submission stored"
// @Failure 400 {object} APIResponse "Invalid request or unsupported payload"
// @Failure 413 {object} APIResponse "Upload exceeds the size limit"
// @Failure 429 {object} APIResponse "Too many uploads"
// @Router /api/submissions [post]
func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondServiceError(w, r, err)
			return
		}
		NewResponseWriter(w, r).BadRequest("expected a multipart/form-data upload: " + err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp files only

	req := createRequestFromForm(r)
	var body io.Reader = http.NoBody

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		req.FileName = header.Filename
		body = file
	case errors.Is(err, http.ErrMissingFile):
		// FileName stays empty and request validation reports "file".
	default:
		respondServiceError(w, r, err)
		return
	}

	res, err := h.submissions.Create(r.Context(), req, body)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, res)
}

// ListSubmissions handles GET /api/submissions, newest first.
//
// @Summary List submissions
// @Description Returns every submission summary, newest first
// @Tags Submissions
// @Produce json
// @Success 200 {object} APIResponse{data=SubmissionList} "Submissions retrieved"
// @Failure 500 {object} APIResponse "Internal server error"
// @Router /api/submissions [get]
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	list, err := h.submissions.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.SubmissionSummary{}
	}
	WriteSuccess(w, r, SubmissionList{Submissions: list})
}

// GetSubmission handles GET /api/submissions/{id}.
//
// @Summary Get a submission
// @Description Returns the stored record of one submission with its parsed metrics
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} APIResponse{data=models.SubmissionDetail} "Submission retrieved"
// @Failure 404 {object} APIResponse "Submission not found"
// @Router /api/submissions/{id} [get]
func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	detail, err := h.submissions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, detail)
}

// GetSubmissionStatus handles GET /api/submissions/{id}/status. An
// unreadable payload is reported inline as ERROR, not as a failure.
//
// @Summary Get submission status
// @Description Returns the processing status; an unreadable payload is reported as ERROR in the body
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} APIResponse{data=models.StatusReport} "Status retrieved"
// @Failure 404 {object} APIResponse "Submission not found"
// @Router /api/submissions/{id}/status [get]
func (h *Handler) GetSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	report, err := h.submissions.GetStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, report)
}

// GetSubmissionData handles GET /api/submissions/{id}/data.
//
// @Summary Get raw run summary
// @Description Returns the summary and metadata sections of a JSON payload as uploaded
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} APIResponse{data=models.RawSummary} "Summary retrieved"
// @Failure 400 {object} APIResponse "Payload is not JSON"
// @Failure 404 {object} APIResponse "Submission not found"
// @Router /api/submissions/{id}/data [get]
func (h *Handler) GetSubmissionData(w http.ResponseWriter, r *http.Request) {
	summary, err := h.submissions.GetRawSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, summary)
}

// GetSubmissionLog handles GET /api/submissions/{id}/log as plain text.
//
// @Summary Get run log
// @Description Returns a .log payload as plain text
// @Tags Submissions
// @Produce plain
// @Param id path string true "Submission ID"
// @Success 200 {string} string "Log text"
// @Failure 400 {object} APIResponse "Payload is not a log"
// @Failure 404 {object} APIResponse "Submission not found"
// @Router /api/submissions/{id}/log [get]
func (h *Handler) GetSubmissionLog(w http.ResponseWriter, r *http.Request) {
	text, err := h.submissions.GetLogText(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(text)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(text); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Client went away during log download")
	}
}

// DownloadSubmissionFile handles GET /api/submissions/{id}/file, streaming
// the payload exactly as uploaded under the submitter's file name.
//
// @Summary Download the payload
// @Description Streams the payload exactly as uploaded, under the submitter's file name
// @Tags Submissions
// @Produce octet-stream
// @Param id path string true "Submission ID"
// @Success 200 {file} file "Payload file"
// @Failure 404 {object} APIResponse "Submission not found"
// @Router /api/submissions/{id}/file [get]
func (h *Handler) DownloadSubmissionFile(w http.ResponseWriter, r *http.Request) {
	f, err := h.submissions.OpenPayload(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.DownloadName}))
	http.ServeContent(w, r, f.DownloadName, f.ModTime, f)
}
