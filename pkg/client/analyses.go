package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/turtacn/lipinski-analyzer/pkg/errors"
	"github.com/turtacn/lipinski-analyzer/pkg/types/lipinski"
)

const (
	analysesPath = "/api/v1/analyses"
	detectPath   = "/api/v1/columns/detect"

	// RunIDHeader carries the run ID of a table download.
	RunIDHeader = "X-Analysis-Run-ID"
)

// AnalyzeOptions are the optional form fields of an analysis upload.
type AnalyzeOptions struct {
	// Column skips detection; it must name a column of the table.
	Column string
	// Sheet selects a workbook sheet of an .xlsx upload.
	Sheet string
	// Export asks the server to store the results in object storage.
	Export bool
	// ExportFormat is "csv", "tsv" or "xlsx"; empty means csv.
	ExportFormat string
	// Rows caps the preview rows in the response; 0 uses the server default.
	Rows int
}

// TableDownload is the augmented table returned by AnalyzeTable.
type TableDownload struct {
	RunID       string
	FileName    string
	ContentType string
	Data        []byte
}

// Analyze uploads a table and returns the analysis summary with preview rows.
func (c *Client) Analyze(ctx context.Context, fileName string, table io.Reader, opts *AnalyzeOptions) (*lipinski.AnalysisResponse, error) {
	req, err := uploadRequest(fileName, table, opts, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	var out lipinski.AnalysisResponse
	if err := decode(resp.body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeCSV uploads a table and downloads the augmented result as CSV.
func (c *Client) AnalyzeCSV(ctx context.Context, fileName string, table io.Reader, opts *AnalyzeOptions) (*TableDownload, error) {
	return c.AnalyzeTable(ctx, fileName, table, "text/csv", opts)
}

// AnalyzeTable uploads a table and downloads the augmented result in the
// format named by contentType.
func (c *Client) AnalyzeTable(ctx context.Context, fileName string, table io.Reader, contentType string, opts *AnalyzeOptions) (*TableDownload, error) {
	req, err := uploadRequest(fileName, table, opts, nil)
	if err != nil {
		return nil, err
	}
	req.accept = contentType
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	dl := &TableDownload{
		RunID:       resp.header.Get(RunIDHeader),
		ContentType: resp.header.Get("Content-Type"),
		Data:        resp.body,
	}
	if _, params, err := mime.ParseMediaType(resp.header.Get("Content-Disposition")); err == nil {
		dl.FileName = params["filename"]
	}
	return dl, nil
}

// Submit uploads a table for asynchronous analysis by the worker.
func (c *Client) Submit(ctx context.Context, fileName string, table io.Reader, opts *AnalyzeOptions) (*lipinski.SubmitResponse, error) {
	req, err := uploadRequest(fileName, table, opts, map[string]string{"async": "true"})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	var out lipinski.SubmitResponse
	if err := decode(resp.body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DetectColumn asks which of columns holds SMILES. An APIError with
// IsNoSmilesColumn is returned when none does.
func (c *Client) DetectColumn(ctx context.Context, columns []string) (*lipinski.DetectResponse, error) {
	if len(columns) == 0 {
		return nil, errors.InvalidParam("columns are required")
	}
	var out lipinski.DetectResponse
	if err := c.postJSON(ctx, detectPath, lipinski.DetectRequest{Columns: columns}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRun fetches one stored run.
func (c *Client) GetRun(ctx context.Context, id string) (*lipinski.Run, error) {
	if id == "" {
		return nil, errors.InvalidParam("run id is required")
	}
	var out lipinski.Run
	if err := c.getJSON(ctx, analysesPath+"/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRuns pages through stored runs, newest first.
func (c *Client) ListRuns(ctx context.Context, limit, offset int) (*lipinski.ListRunsResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	var out lipinski.ListRunsResponse
	if err := c.getJSON(ctx, analysesPath, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// uploadRequest buffers the multipart body so retries can resend it.
func uploadRequest(fileName string, table io.Reader, opts *AnalyzeOptions, extra map[string]string) (request, error) {
	if fileName == "" || table == nil {
		return request{}, errors.InvalidParam("file name and content are required")
	}
	if opts == nil {
		opts = &AnalyzeOptions{}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return request{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(fw, table); err != nil {
		return request{}, fmt.Errorf("failed to read table: %w", err)
	}

	fields := map[string]string{
		"column": opts.Column,
		"sheet":  opts.Sheet,
		"format": opts.ExportFormat,
	}
	if opts.Export {
		fields["export"] = "true"
	}
	for k, v := range extra {
		fields[k] = v
	}
	for _, k := range []string{"column", "sheet", "export", "format", "async"} {
		if v := fields[k]; v != "" {
			if err := mw.WriteField(k, v); err != nil {
				return request{}, fmt.Errorf("failed to write field %s: %w", k, err)
			}
		}
	}
	if err := mw.Close(); err != nil {
		return request{}, fmt.Errorf("failed to close multipart body: %w", err)
	}

	var query url.Values
	if opts.Rows > 0 {
		query = url.Values{"rows": {strconv.Itoa(opts.Rows)}}
	}
	return request{
		method:      http.MethodPost,
		path:        analysesPath,
		query:       query,
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
	}, nil
}

//Personal.AI order the ending
