package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/lipinski-analyzer/internal/application/analysis"
	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/tabular"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
	"github.com/turtacn/lipinski-analyzer/pkg/types/lipinski"
)

// RunIDHeader carries the run ID on file downloads.
const RunIDHeader = "X-Analysis-Run-ID"

const multipartMemory = 32 << 20

// UploadStore keeps uploaded tables for asynchronous analysis.
type UploadStore interface {
	SaveUpload(ctx context.Context, fileName string, data []byte) (string, error)
}

// RequestPublisher queues asynchronous analyses.
type RequestPublisher interface {
	PublishRequested(ctx context.Context, evt compound.AnalysisRequested) error
}

// ExportLinker turns an export key into a download URL.
type ExportLinker interface {
	PresignedURL(ctx context.Context, key string) (string, error)
}

// AnalysisHandler serves the /analyses and /columns endpoints.
type AnalysisHandler struct {
	svc         analysis.Service
	uploads     UploadStore
	requests    RequestPublisher
	links       ExportLinker
	maxUpload   int64
	previewRows int
	logger      logging.Logger
	now         func() time.Time
}

// AnalysisHandlerOption configures an AnalysisHandler.
type AnalysisHandlerOption func(*AnalysisHandler)

// WithAsync enables async=true submissions through object storage and Kafka.
func WithAsync(uploads UploadStore, requests RequestPublisher) AnalysisHandlerOption {
	return func(h *AnalysisHandler) {
		h.uploads = uploads
		h.requests = requests
	}
}

// WithExportLinks adds presigned download URLs to exported results.
func WithExportLinks(l ExportLinker) AnalysisHandlerOption {
	return func(h *AnalysisHandler) { h.links = l }
}

// WithMaxUploadSize caps request bodies, in bytes.
func WithMaxUploadSize(n int64) AnalysisHandlerOption {
	return func(h *AnalysisHandler) { h.maxUpload = n }
}

// WithPreviewRows sets how many rows a JSON response carries by default.
func WithPreviewRows(n int) AnalysisHandlerOption {
	return func(h *AnalysisHandler) { h.previewRows = n }
}

// NewAnalysisHandler creates the analysis endpoints around svc.
func NewAnalysisHandler(svc analysis.Service, logger logging.Logger, opts ...AnalysisHandlerOption) *AnalysisHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	h := &AnalysisHandler{
		svc:         svc,
		maxUpload:   64 << 20,
		previewRows: 20,
		logger:      logger.Named("http.analysis"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Analyze handles POST /api/v1/analyses.
//
// The multipart form carries the table in "file" and optionally "column",
// "sheet", "export", "format" and "async". JSON is returned unless Accept names
// a table format, in which case the augmented table is sent as an attachment.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	name, data, err := h.readUpload(w, r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	async, err := formBool(r, "async")
	if err != nil {
		writeAppError(w, err)
		return
	}
	if async {
		h.submit(w, r, name, data)
		return
	}

	export, err := formBool(r, "export")
	if err != nil {
		writeAppError(w, err)
		return
	}
	var exportFormat tabular.Format
	if v := r.FormValue("format"); v != "" {
		if exportFormat, err = tabular.ParseFormat(v); err != nil {
			writeAppError(w, err)
			return
		}
	}
	preview, err := queryInt(r, "rows", h.previewRows)
	if err != nil {
		writeAppError(w, err)
		return
	}

	res, err := h.svc.Analyze(r.Context(), &analysis.AnalyzeInput{
		FileName:       name,
		Content:        data,
		ColumnOverride: strings.TrimSpace(r.FormValue("column")),
		Sheet:          r.FormValue("sheet"),
		Export:         export,
		ExportFormat:   exportFormat,
		Source:         analysis.SourceHTTP,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	if f, ok := acceptedTableFormat(r.Header.Get("Accept")); ok {
		h.writeTable(w, f, res)
		return
	}

	resp := res.Response(preview)
	if res.ExportKey != "" && h.links != nil {
		if url, err := h.links.PresignedURL(r.Context(), res.ExportKey); err == nil {
			resp.ExportURL = url
		} else {
			resp.Warnings = append(resp.Warnings, "export link not available: "+err.Error())
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AnalysisHandler) submit(w http.ResponseWriter, r *http.Request, name string, data []byte) {
	if h.uploads == nil || h.requests == nil {
		writeAppError(w, errors.New(errors.ErrCodeFeatureDisabled, "asynchronous analysis is not enabled"))
		return
	}
	key, err := h.uploads.SaveUpload(r.Context(), name, data)
	if err != nil {
		writeAppError(w, err)
		return
	}
	err = h.requests.PublishRequested(r.Context(), compound.AnalysisRequested{
		ObjectKey: key,
		FileName:  name,
		Column:    strings.TrimSpace(r.FormValue("column")),
		Requested: h.now().UTC(),
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	h.logger.Info("Queued analysis request",
		logging.String("object_key", key),
		logging.String("file", name))
	writeJSON(w, http.StatusAccepted, lipinski.SubmitResponse{ObjectKey: key, Status: "queued"})
}

func (h *AnalysisHandler) writeTable(w http.ResponseWriter, f tabular.Format, res *analysis.AnalyzeResult) {
	var buf bytes.Buffer
	if err := tabular.Write(&buf, f, res.Report); err != nil {
		writeAppError(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.ExportName()}))
	w.Header().Set(RunIDHeader, res.Run.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// readUpload returns the uploaded file's name and content.
func (h *AnalysisHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, errors.Newf(errors.ErrCodePayloadTooLarge, "upload exceeds %d bytes", h.maxUpload)
		}
		return "", nil, errors.Wrap(err, errors.ErrCodeValidation, "expected a multipart form with a file field")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errors.New(errors.ErrCodeValidation, "file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrCodeValidation, "read upload")
	}
	return header.Filename, data, nil
}

// List handles GET /api/v1/analyses.
func (h *AnalysisHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeAppError(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeAppError(w, err)
		return
	}
	limit, offset = analysis.NormalizePage(limit, offset)

	runs, err := h.svc.ListRuns(r.Context(), limit, offset)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lipinski.ListRunsResponse{Runs: analysis.RunsResponse(runs), Limit: limit, Offset: offset})
}

// Get handles GET /api/v1/analyses/{id}.
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis.RunResponse(run))
}

// DetectColumn handles POST /api/v1/columns/detect.
func (h *AnalysisHandler) DetectColumn(w http.ResponseWriter, r *http.Request) {
	var req lipinski.DetectRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeAppError(w, errors.Wrap(err, errors.ErrCodeValidation, "invalid JSON body"))
		return
	}
	if len(req.Columns) == 0 {
		writeAppError(w, errors.New(errors.ErrCodeValidation, "columns must not be empty"))
		return
	}

	res, err := h.svc.DetectColumn(r.Context(), &analysis.DetectInput{Columns: req.Columns})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Response())
}

// acceptedTableFormat reports which table format the Accept header asks for.
func acceptedTableFormat(accept string) (tabular.Format, bool) {
	for _, part := range strings.Split(accept, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		for _, f := range []tabular.Format{tabular.FormatCSV, tabular.FormatTSV, tabular.FormatXLSX} {
			if mt == f.ContentType() {
				return f, true
			}
		}
	}
	return "", false
}

func formBool(r *http.Request, name string) (bool, error) {
	v := r.FormValue(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Newf(errors.ErrCodeValidation, "%s must be a boolean", name)
	}
	return b, nil
}

//Personal.AI order the ending
