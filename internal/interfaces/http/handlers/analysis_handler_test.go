package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/lipinski-analyzer/internal/application/analysis"
	"github.com/turtacn/lipinski-analyzer/internal/chem"
	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/internal/testutil"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
	"github.com/turtacn/lipinski-analyzer/pkg/types/lipinski"
)

const compoundsCSV = "ID,Name,Canonical_SMILES\n" +
	"1,ethanol,CCO\n" +
	"2,aspirin,CC(=O)Oc1ccccc1C(=O)O\n" +
	"3,tetracontane,CCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC\n" +
	"4,broken,C1CC\n"

// ─────────────────────────────────────────────────────────────────────────────
// Mocks
// ─────────────────────────────────────────────────────────────────────────────

type mockService struct {
	mock.Mock
}

func (m *mockService) Analyze(ctx context.Context, input *analysis.AnalyzeInput) (*analysis.AnalyzeResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.AnalyzeResult), args.Error(1)
}

func (m *mockService) DetectColumn(ctx context.Context, input *analysis.DetectInput) (*analysis.DetectResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.DetectResult), args.Error(1)
}

func (m *mockService) GetRun(ctx context.Context, id string) (*compound.AnalysisRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compound.AnalysisRun), args.Error(1)
}

func (m *mockService) ListRuns(ctx context.Context, limit, offset int) ([]*compound.AnalysisRun, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*compound.AnalysisRun), args.Error(1)
}

type mockUploads struct {
	mock.Mock
}

func (m *mockUploads) SaveUpload(ctx context.Context, fileName string, data []byte) (string, error) {
	args := m.Called(ctx, fileName, data)
	return args.String(0), args.Error(1)
}

type mockRequests struct {
	mock.Mock
}

func (m *mockRequests) PublishRequested(ctx context.Context, evt compound.AnalysisRequested) error {
	return m.Called(ctx, evt).Error(0)
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func multipartRequest(t *testing.T, target, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, target, &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) lipinski.ErrorResponse {
	t.Helper()
	var resp lipinski.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func withRouteParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// ─────────────────────────────────────────────────────────────────────────────
// Analyze against the real engine
// ─────────────────────────────────────────────────────────────────────────────

type AnalyzeHandlerTestSuite struct {
	suite.Suite
	handler *AnalysisHandler
	logger  *testutil.MockLogger
}

func (s *AnalyzeHandlerTestSuite) SetupTest() {
	s.logger = testutil.NewMockLogger()
	analyzer := compound.NewCompoundAnalyzer(chem.NewParser(), chem.NewEngine(), s.logger)
	svc := analysis.NewService(analyzer, s.logger)
	s.handler = NewAnalysisHandler(svc, s.logger, WithPreviewRows(2))
}

func (s *AnalyzeHandlerTestSuite) TestAnalyze_JSON() {
	w := httptest.NewRecorder()
	s.handler.Analyze(w, multipartRequest(s.T(), "/api/v1/analyses", "compounds.csv", compoundsCSV, nil))

	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp lipinski.AnalysisResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))

	s.Equal("Canonical_SMILES", resp.Run.SmilesColumn)
	s.True(resp.Run.Detected)
	s.Equal(lipinski.Counts{Total: 4, Valid: 3, Invalid: 1, Pass: 2, Fail: 1}, resp.Summary.Counts)
	s.Equal([]string{"ID", "Name", "Canonical_SMILES"}, resp.Columns)
	s.Require().Len(resp.Rows, 2)
	s.Equal(lipinski.ResultPass, resp.Rows[0].Result)
	s.Equal("ethanol", resp.Rows[0].Values["Name"])
	s.InDelta(46.069, resp.Rows[0].Descriptors.MolWt, 1e-3)
}

func (s *AnalyzeHandlerTestSuite) TestAnalyze_PreviewRowsParameter() {
	w := httptest.NewRecorder()
	s.handler.Analyze(w, multipartRequest(s.T(), "/api/v1/analyses?rows=10", "compounds.csv", compoundsCSV, nil))

	s.Require().Equal(http.StatusOK, w.Code)
	var resp lipinski.AnalysisResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp.Rows, 4)
	s.Equal(lipinski.ResultInvalid, resp.Rows[3].Result)
	s.Nil(resp.Rows[3].Descriptors)
}

func (s *AnalyzeHandlerTestSuite) TestAnalyze_CSVAttachment() {
	r := multipartRequest(s.T(), "/api/v1/analyses", "compounds.csv", compoundsCSV, nil)
	r.Header.Set("Accept", "text/csv")
	w := httptest.NewRecorder()
	s.handler.Analyze(w, r)

	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("text/csv", w.Header().Get("Content-Type"))
	s.Equal("attachment; filename=lipinski_results.csv", w.Header().Get("Content-Disposition"))
	s.NotEmpty(w.Header().Get(RunIDHeader))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	s.Require().Len(lines, 5)
	s.Equal("ID,Name,Canonical_SMILES,SMILES_Valid,MolWt,LogP,NumHDonors,NumHAcceptors,LipinskiViolations,LipinskiResult", lines[0])
	s.True(strings.HasSuffix(lines[4], "Invalid SMILES"))
}

func (s *AnalyzeHandlerTestSuite) TestAnalyze_ColumnOverrideMissing() {
	w := httptest.NewRecorder()
	s.handler.Analyze(w, multipartRequest(s.T(), "/api/v1/analyses", "compounds.csv", compoundsCSV,
		map[string]string{"column": "Structure"}))

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(string(errors.ErrCodeColumnMissing), decodeError(s.T(), w).Code)
}

func (s *AnalyzeHandlerTestSuite) TestAnalyze_NoSmilesColumn() {
	w := httptest.NewRecorder()
	s.handler.Analyze(w, multipartRequest(s.T(), "/api/v1/analyses", "compounds.csv", "ID,Name\n1,x\n", nil))

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal(string(errors.ErrCodeNoSmilesColumn), decodeError(s.T(), w).Code)
}

func (s *AnalyzeHandlerTestSuite) TestAnalyze_UnsupportedFileType() {
	w := httptest.NewRecorder()
	s.handler.Analyze(w, multipartRequest(s.T(), "/api/v1/analyses", "compounds.pdf", "%PDF", nil))

	s.Equal(http.StatusUnsupportedMediaType, w.Code)
}

func (s *AnalyzeHandlerTestSuite) TestAnalyze_MissingFile() {
	w := httptest.NewRecorder()
	s.handler.Analyze(w, multipartRequest(s.T(), "/api/v1/analyses", "", "", map[string]string{"column": "x"}))

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(string(errors.ErrCodeValidation), decodeError(s.T(), w).Code)
}

func (s *AnalyzeHandlerTestSuite) TestAnalyze_UploadTooLarge() {
	h := NewAnalysisHandler(&mockService{}, s.logger, WithMaxUploadSize(16))
	w := httptest.NewRecorder()
	h.Analyze(w, multipartRequest(s.T(), "/api/v1/analyses", "compounds.csv", compoundsCSV, nil))

	s.Equal(http.StatusRequestEntityTooLarge, w.Code)
}

func (s *AnalyzeHandlerTestSuite) TestAnalyze_BadBoolean() {
	w := httptest.NewRecorder()
	s.handler.Analyze(w, multipartRequest(s.T(), "/api/v1/analyses", "compounds.csv", compoundsCSV,
		map[string]string{"export": "maybe"}))

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *AnalyzeHandlerTestSuite) TestAnalyze_ExportWithoutStorageWarns() {
	w := httptest.NewRecorder()
	s.handler.Analyze(w, multipartRequest(s.T(), "/api/v1/analyses", "compounds.csv", compoundsCSV,
		map[string]string{"export": "true"}))

	s.Require().Equal(http.StatusOK, w.Code)
	var resp lipinski.AnalysisResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Empty(resp.ExportKey)
	s.Contains(resp.Warnings, "export requested but object storage is not configured")
}

func (s *AnalyzeHandlerTestSuite) TestAnalyze_AsyncDisabled() {
	w := httptest.NewRecorder()
	s.handler.Analyze(w, multipartRequest(s.T(), "/api/v1/analyses", "compounds.csv", compoundsCSV,
		map[string]string{"async": "true"}))

	s.Equal(http.StatusNotImplemented, w.Code)
}

func TestAnalyzeHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyzeHandlerTestSuite))
}

// ─────────────────────────────────────────────────────────────────────────────
// Async, history and detection against mocks
// ─────────────────────────────────────────────────────────────────────────────

func TestAnalyze_AsyncQueuesRequest(t *testing.T) {
	svc := &mockService{}
	uploads := &mockUploads{}
	requests := &mockRequests{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	h := NewAnalysisHandler(svc, testutil.NewMockLogger(), WithAsync(uploads, requests))
	h.now = func() time.Time { return now }

	uploads.On("SaveUpload", mock.Anything, "compounds.csv", []byte(compoundsCSV)).
		Return("uploads/2026/03/01/abc/compounds.csv", nil)
	requests.On("PublishRequested", mock.Anything, compound.AnalysisRequested{
		ObjectKey: "uploads/2026/03/01/abc/compounds.csv",
		FileName:  "compounds.csv",
		Column:    "Canonical_SMILES",
		Requested: now,
	}).Return(nil)

	w := httptest.NewRecorder()
	h.Analyze(w, multipartRequest(t, "/api/v1/analyses", "compounds.csv", compoundsCSV,
		map[string]string{"async": "true", "column": "Canonical_SMILES"}))

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp lipinski.SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "queued", resp.Status)
	assert.Equal(t, "uploads/2026/03/01/abc/compounds.csv", resp.ObjectKey)
	svc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
	uploads.AssertExpectations(t)
	requests.AssertExpectations(t)
}

func TestAnalyze_AsyncPublishFailure(t *testing.T) {
	uploads := &mockUploads{}
	requests := &mockRequests{}
	h := NewAnalysisHandler(&mockService{}, nil, WithAsync(uploads, requests))

	uploads.On("SaveUpload", mock.Anything, mock.Anything, mock.Anything).Return("uploads/k", nil)
	requests.On("PublishRequested", mock.Anything, mock.Anything).
		Return(errors.New(errors.ErrCodePublishFailed, "broker unavailable"))

	w := httptest.NewRecorder()
	h.Analyze(w, multipartRequest(t, "/api/v1/analyses", "compounds.csv", compoundsCSV,
		map[string]string{"async": "1"}))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "failed to publish event", decodeError(t, w).Message)
}

func TestList(t *testing.T) {
	svc := &mockService{}
	h := NewAnalysisHandler(svc, nil)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.On("ListRuns", mock.Anything, 100, 5).Return([]*compound.AnalysisRun{
		{ID: "r1", FileName: "a.csv", SmilesColumn: "SMILES", Counts: compound.Counts{Total: 2, Valid: 2, Pass: 2},
			Duration: 1500 * time.Millisecond, CreatedAt: created},
	}, nil)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/v1/analyses?limit=500&offset=5", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp lipinski.ListRunsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 100, resp.Limit)
	assert.Equal(t, 5, resp.Offset)
	require.Len(t, resp.Runs, 1)
	assert.Equal(t, int64(1500), resp.Runs[0].DurationMS)
	assert.Equal(t, created, resp.Runs[0].CreatedAt)
}

func TestList_BadLimit(t *testing.T) {
	h := NewAnalysisHandler(&mockService{}, nil)
	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/v1/analyses?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestList_HistoryDisabled(t *testing.T) {
	svc := &mockService{}
	h := NewAnalysisHandler(svc, nil)
	svc.On("ListRuns", mock.Anything, 20, 0).
		Return(nil, errors.New(errors.ErrCodeHistoryDisabled, "run history is not enabled"))

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil))

	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, string(errors.ErrCodeHistoryDisabled), decodeError(t, w).Code)
}

func TestGet(t *testing.T) {
	svc := &mockService{}
	h := NewAnalysisHandler(svc, nil)
	svc.On("GetRun", mock.Anything, "r1").Return(&compound.AnalysisRun{ID: "r1", SmilesColumn: "smiles"}, nil)
	svc.On("GetRun", mock.Anything, "missing").Return(nil, errors.New(errors.ErrCodeRunNotFound, "run not found"))

	w := httptest.NewRecorder()
	h.Get(w, withRouteParam(httptest.NewRequest(http.MethodGet, "/api/v1/analyses/r1", nil), "id", "r1"))
	require.Equal(t, http.StatusOK, w.Code)
	var run lipinski.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, "smiles", run.SmilesColumn)

	w = httptest.NewRecorder()
	h.Get(w, withRouteParam(httptest.NewRequest(http.MethodGet, "/api/v1/analyses/missing", nil), "id", "missing"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "run not found", decodeError(t, w).Message)
}

func TestDetectColumn(t *testing.T) {
	logger := testutil.NewMockLogger()
	analyzer := compound.NewCompoundAnalyzer(chem.NewParser(), chem.NewEngine(), logger)
	h := NewAnalysisHandler(analysis.NewService(analyzer, logger), logger)

	tests := []struct {
		name   string
		body   string
		code   int
		column string
	}{
		{"exact", `{"columns":["ID","smiles","Canonical_SMILES"]}`, http.StatusOK, "smiles"},
		{"substring", `{"columns":["ID","Canonical_SMILES"]}`, http.StatusOK, "Canonical_SMILES"},
		{"none", `{"columns":["ID","Name"]}`, http.StatusUnprocessableEntity, ""},
		{"empty", `{"columns":[]}`, http.StatusBadRequest, ""},
		{"malformed", `{"columns":`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.DetectColumn(w, httptest.NewRequest(http.MethodPost, "/api/v1/columns/detect", strings.NewReader(tt.body)))

			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code != http.StatusOK {
				return
			}
			var resp lipinski.DetectResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.column, resp.Column)
		})
	}
}

func TestWriteAppError_MasksServerErrors(t *testing.T) {
	w := httptest.NewRecorder()
	writeAppError(w, errors.Wrap(assert.AnError, errors.ErrCodeStorageFailed, "dial tcp 10.0.0.3:9000: refused"))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, string(errors.ErrCodeStorageFailed), resp.Code)
	assert.Equal(t, "object storage error", resp.Message)

	w = httptest.NewRecorder()
	writeAppError(w, assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, string(errors.CodeUnknown), decodeError(t, w).Code)
}

func TestAcceptedTableFormat(t *testing.T) {
	f, ok := acceptedTableFormat("application/json, text/csv;q=0.9")
	assert.True(t, ok)
	assert.Equal(t, "csv", string(f))

	_, ok = acceptedTableFormat("application/json")
	assert.False(t, ok)

	f, ok = acceptedTableFormat("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	assert.True(t, ok)
	assert.Equal(t, "xlsx", string(f))
}

//Personal.AI order the ending
