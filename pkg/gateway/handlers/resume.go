package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/prepworks/interviewd/pkg/core"
	"github.com/prepworks/interviewd/pkg/gateway/config"
	"github.com/prepworks/interviewd/pkg/gateway/metrics"
	"github.com/prepworks/interviewd/pkg/resume"
)

const minResumeTextLen = 50

// ResumeHandler analyzes an uploaded resume for ATS compatibility. The
// request is multipart form data with a "file" part and optional
// "job_description" and "target_role" fields.
type ResumeHandler struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func (h ResumeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxResumeBytes)
	if err := r.ParseMultipartForm(h.Config.MaxResumeBytes); err != nil {
		writeError(w, r, core.NewInvalidRequestError("invalid multipart form: "+err.Error()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, core.NewInvalidRequestErrorWithParam("resume file is required", "file"))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, r, core.NewInvalidRequestErrorWithParam("no filename provided", "file"))
		return
	}
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".pdf", ".docx", ".txt":
	default:
		writeError(w, r, core.NewInvalidRequestErrorWithParam(
			"unsupported file format, please upload a PDF, DOCX, or TXT file", "file"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, core.NewInvalidRequestError("failed to read resume file"))
		return
	}

	text, err := resume.ExtractText(data, header.Filename)
	if err != nil {
		writeError(w, r, core.NewInvalidRequestError(err.Error()))
		return
	}
	if len(strings.TrimSpace(text)) < minResumeTextLen {
		writeError(w, r, core.NewInvalidRequestError(
			"unable to extract sufficient text from the file, please ensure the file is not empty or corrupted"))
		return
	}

	report := resume.Analyze(text, r.FormValue("job_description"), r.FormValue("target_role"))

	h.Metrics.ObserveResumeAnalyzed(report.Rating)
	h.Logger.Info("resume analyzed",
		"filename", header.Filename,
		"bytes", len(data),
		"ats_score", report.ATSScore,
		"rating", report.Rating)

	writeJSON(w, http.StatusOK, report)
}
