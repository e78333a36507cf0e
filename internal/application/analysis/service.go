// Package analysis orchestrates table ingestion, column detection, Lipinski
// analysis and the optional run history, export and event side effects.
package analysis

import (
	"bytes"
	"context"
	"time"

	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/tabular"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// Sources label where an analysis was requested from.
const (
	SourceCLI    = "cli"
	SourceHTTP   = "http"
	SourceWorker = "worker"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service defines the analysis application operations.
type Service interface {
	Analyze(ctx context.Context, input *AnalyzeInput) (*AnalyzeResult, error)
	DetectColumn(ctx context.Context, input *DetectInput) (*DetectResult, error)
	GetRun(ctx context.Context, id string) (*compound.AnalysisRun, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*compound.AnalysisRun, error)
}

// ReportExporter stores an augmented table and returns its object key.
type ReportExporter interface {
	SaveExport(ctx context.Context, runID string, format tabular.Format, data []byte) (string, error)
}

// EventPublisher announces finished runs.
type EventPublisher interface {
	PublishCompleted(ctx context.Context, evt compound.AnalysisCompleted) error
}

// MetricsRecorder receives analysis and event outcomes.
type MetricsRecorder interface {
	RecordAnalysis(source string, counts compound.Counts, elapsed time.Duration, err error)
	RecordEvent(topic string, err error)
}

// AnalyzeInput contains input for one analysis.
type AnalyzeInput struct {
	FileName string
	Content  []byte
	// ColumnOverride skips detection; it must name an existing column.
	ColumnOverride string
	// Sheet selects a workbook sheet; empty means the first.
	Sheet string
	// Export writes the augmented table to object storage.
	Export       bool
	ExportFormat tabular.Format
	Source       string
}

// AnalyzeResult is the outcome of Analyze.
type AnalyzeResult struct {
	Run        *compound.AnalysisRun
	Report     *compound.AnalysisReport
	Summary    compound.Summary
	Candidates []compound.ColumnMatch
	ExportKey  string
	// Warnings lists side effects that failed after the report was computed.
	Warnings []string
}

// DetectInput names the columns directly or supplies a file whose header is
// read.
type DetectInput struct {
	Columns  []string
	FileName string
	Content  []byte
}

// DetectResult is the outcome of DetectColumn.
type DetectResult struct {
	Column     string                 `json:"column"`
	Candidates []compound.ColumnMatch `json:"candidates"`
	Columns    []string               `json:"columns"`
}

// Option configures the service.
type Option func(*serviceImpl)

// WithRunRepository enables run history.
func WithRunRepository(r compound.RunRepository) Option {
	return func(s *serviceImpl) { s.runs = r }
}

// WithExporter enables export to object storage.
func WithExporter(e ReportExporter) Option {
	return func(s *serviceImpl) { s.exporter = e }
}

// WithPublisher enables completion events.
func WithPublisher(p EventPublisher, topic string) Option {
	return func(s *serviceImpl) {
		s.publisher = p
		s.topic = topic
	}
}

// WithMetrics records analysis outcomes.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *serviceImpl) { s.metrics = m }
}

// WithMaxRows rejects larger tables. Zero means unlimited.
func WithMaxRows(n int) Option {
	return func(s *serviceImpl) { s.maxRows = n }
}

// WithTimeout bounds a single Analyze call.
func WithTimeout(d time.Duration) Option {
	return func(s *serviceImpl) { s.timeout = d }
}

type serviceImpl struct {
	analyzer  *compound.CompoundAnalyzer
	detector  *compound.ColumnDetector
	runs      compound.RunRepository
	exporter  ReportExporter
	publisher EventPublisher
	topic     string
	metrics   MetricsRecorder
	maxRows   int
	timeout   time.Duration
	logger    logging.Logger
	now       func() time.Time
}

// NewService creates the analysis service around analyzer.
func NewService(analyzer *compound.CompoundAnalyzer, logger logging.Logger, opts ...Option) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &serviceImpl{
		analyzer: analyzer,
		detector: compound.NewColumnDetector(),
		logger:   logger.Named("analysis"),
		topic:    compound.TopicAnalysisCompleted,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) Analyze(ctx context.Context, input *AnalyzeInput) (*AnalyzeResult, error) {
	if input == nil || input.FileName == "" {
		return nil, errors.InvalidParam("file name is required")
	}
	source := input.Source
	if source == "" {
		source = SourceCLI
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := s.now()
	res, err := s.analyze(ctx, input)
	elapsed := s.now().Sub(start)
	if err != nil {
		s.record(source, compound.Counts{}, elapsed, err)
		s.logger.Warn("Analysis failed",
			logging.String("file", input.FileName),
			logging.String("source", source),
			logging.Err(err))
		return nil, err
	}

	res.Run = compound.NewAnalysisRun(input.FileName, res.Report, input.ColumnOverride == "", elapsed)
	res.Summary = res.Report.Summarize()
	s.record(source, res.Summary.Counts, elapsed, nil)

	s.persist(ctx, res)
	if input.Export {
		s.export(ctx, res, input.ExportFormat)
	}
	s.publish(ctx, res)

	s.logger.Info("Analysis completed",
		logging.String("run_id", res.Run.ID),
		logging.String("file", input.FileName),
		logging.String("column", res.Report.SmilesColumn),
		logging.Int("total", res.Summary.Total),
		logging.Int("pass", res.Summary.Pass),
		logging.Int("fail", res.Summary.Fail),
		logging.Int("invalid", res.Summary.Invalid),
		logging.Duration("elapsed", elapsed))
	return res, nil
}

// analyze runs the steps whose failure means there is no report.
func (s *serviceImpl) analyze(ctx context.Context, input *AnalyzeInput) (*AnalyzeResult, error) {
	table, err := tabular.Read(input.FileName, bytes.NewReader(input.Content), tabular.ReadOptions{
		MaxRows: s.maxRows,
		Sheet:   input.Sheet,
	})
	if err != nil {
		return nil, err
	}

	candidates := s.detector.Candidates(table.Columns)
	column := input.ColumnOverride
	if column != "" {
		if !table.HasColumn(column) {
			return nil, errors.Newf(errors.ErrCodeColumnMissing, "column %q not found in table", column).
				WithDetail("file=" + input.FileName)
		}
	} else if column, err = s.detector.Detect(table.Columns); err != nil {
		return nil, err
	}

	report, err := s.analyzer.Analyze(ctx, table, column)
	if err != nil {
		return nil, err
	}
	return &AnalyzeResult{Report: report, Candidates: candidates}, nil
}

func (s *serviceImpl) persist(ctx context.Context, res *AnalyzeResult) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Save(ctx, res.Run); err != nil {
		s.warn(res, "run history not saved", err)
	}
}

func (s *serviceImpl) export(ctx context.Context, res *AnalyzeResult, format tabular.Format) {
	if s.exporter == nil {
		res.Warnings = append(res.Warnings, "export requested but object storage is not configured")
		return
	}
	if format == "" {
		format = tabular.FormatCSV
	}
	var buf bytes.Buffer
	if err := tabular.Write(&buf, format, res.Report); err != nil {
		s.warn(res, "export failed", err)
		return
	}
	key, err := s.exporter.SaveExport(ctx, res.Run.ID, format, buf.Bytes())
	if err != nil {
		s.warn(res, "export failed", err)
		return
	}
	res.ExportKey = key
	res.Run.ExportKey = key

	if s.runs == nil {
		return
	}
	if err := s.runs.SetExportKey(ctx, res.Run.ID, key); err != nil {
		s.warn(res, "export key not recorded", err)
	}
}

func (s *serviceImpl) publish(ctx context.Context, res *AnalyzeResult) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishCompleted(ctx, compound.AnalysisCompleted{
		RunID:        res.Run.ID,
		FileName:     res.Run.FileName,
		SmilesColumn: res.Run.SmilesColumn,
		Counts:       res.Run.Counts,
		ExportKey:    res.ExportKey,
		CompletedAt:  res.Run.CreatedAt,
	})
	if s.metrics != nil {
		s.metrics.RecordEvent(s.topic, err)
	}
	if err != nil {
		s.warn(res, "completion event not published", err)
	}
}

func (s *serviceImpl) warn(res *AnalyzeResult, msg string, err error) {
	res.Warnings = append(res.Warnings, msg+": "+err.Error())
	s.logger.Warn("Analysis side effect failed",
		logging.String("run_id", res.Run.ID),
		logging.String("step", msg),
		logging.Err(err))
}

func (s *serviceImpl) record(source string, counts compound.Counts, elapsed time.Duration, err error) {
	if s.metrics != nil {
		s.metrics.RecordAnalysis(source, counts, elapsed, err)
	}
}

func (s *serviceImpl) DetectColumn(ctx context.Context, input *DetectInput) (*DetectResult, error) {
	if input == nil {
		return nil, errors.InvalidParam("columns or file are required")
	}
	columns := input.Columns
	if len(columns) == 0 {
		if input.FileName == "" {
			return nil, errors.InvalidParam("columns or file are required")
		}
		table, err := tabular.Read(input.FileName, bytes.NewReader(input.Content), tabular.ReadOptions{MaxRows: s.maxRows})
		if err != nil {
			return nil, err
		}
		columns = table.Columns
	}

	result := &DetectResult{
		Candidates: s.detector.Candidates(columns),
		Columns:    columns,
	}
	col, err := s.detector.Detect(columns)
	if err != nil {
		return result, err
	}
	result.Column = col
	return result, nil
}

func (s *serviceImpl) GetRun(ctx context.Context, id string) (*compound.AnalysisRun, error) {
	if s.runs == nil {
		return nil, errors.New(errors.ErrCodeHistoryDisabled, "run history is not enabled")
	}
	if id == "" {
		return nil, errors.InvalidParam("run id is required")
	}
	return s.runs.FindByID(ctx, id)
}

func (s *serviceImpl) ListRuns(ctx context.Context, limit, offset int) ([]*compound.AnalysisRun, error) {
	if s.runs == nil {
		return nil, errors.New(errors.ErrCodeHistoryDisabled, "run history is not enabled")
	}
	limit, offset = NormalizePage(limit, offset)
	return s.runs.List(ctx, limit, offset)
}

// NormalizePage applies the run listing defaults: limit 20 when unset, at most
// 100, and a non-negative offset.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

//Personal.AI order the ending
