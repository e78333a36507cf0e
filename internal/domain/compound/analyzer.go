package compound

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// CompoundAnalyzer classifies every row of a CompoundTable against the Rule
// of Five. It holds no mutable state and is safe for concurrent use.
type CompoundAnalyzer struct {
	parser      StructureParser
	engine      DescriptorEngine
	logger      logging.Logger
	concurrency int
}

// AnalyzerOption configures a CompoundAnalyzer.
type AnalyzerOption func(*CompoundAnalyzer)

// WithConcurrency bounds the number of rows analyzed at once. Values below 1
// are ignored.
func WithConcurrency(n int) AnalyzerOption {
	return func(a *CompoundAnalyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// NewCompoundAnalyzer wires the analyzer to its parsing and descriptor
// capabilities. A nil logger discards output.
func NewCompoundAnalyzer(parser StructureParser, engine DescriptorEngine, logger logging.Logger, opts ...AnalyzerOption) *CompoundAnalyzer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	a := &CompoundAnalyzer{
		parser:      parser,
		engine:      engine,
		logger:      logger,
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze produces one AnalysisRow per table row, in table order.
//
// Invalid SMILES and descriptor failures are row outcomes, not errors. The
// returned error is limited to a nil table, an unknown column and ctx
// cancellation; in those cases no report is produced.
func (a *CompoundAnalyzer) Analyze(ctx context.Context, table *CompoundTable, smilesColumn string) (*AnalysisReport, error) {
	if table == nil {
		return nil, errors.InvalidParam("table is required")
	}
	col := table.ColumnIndex(smilesColumn)
	if col < 0 {
		return nil, errors.Newf(errors.ErrCodeColumnMissing, "column %q not found in table", smilesColumn)
	}

	rows := make([]AnalysisRow, len(table.Rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i := range table.Rows {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each goroutine owns rows[i]; no locking required.
			rows[i] = a.analyzeRow(i, table.Rows[i], col)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "analysis cancelled")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "analysis cancelled")
	}

	return &AnalysisReport{
		Columns:      append([]string(nil), table.Columns...),
		SmilesColumn: smilesColumn,
		Rows:         rows,
	}, nil
}

// analyzeRow never fails: every path ends in a scored or an invalid row.
func (a *CompoundAnalyzer) analyzeRow(index int, cells Row, col int) (row AnalysisRow) {
	cell := cells[col]
	if cell.Kind != CellString {
		return invalidRow(index, cells, "")
	}
	smiles := strings.TrimSpace(cell.Str)
	if smiles == "" {
		return invalidRow(index, cells, "")
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("chemistry capability panicked; row marked invalid",
				logging.Int("row", index),
				logging.String("smiles", smiles),
				logging.Any("panic", r))
			row = invalidRow(index, cells, smiles)
			row.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	structure, ok := a.parser.Parse(smiles)
	if !ok || structure == nil {
		return invalidRow(index, cells, smiles)
	}

	d, err := a.engine.Compute(structure)
	if err != nil {
		a.logger.Warn("descriptor computation failed; row marked invalid",
			logging.Int("row", index),
			logging.String("smiles", smiles),
			logging.Err(err))
		row = invalidRow(index, cells, smiles)
		row.Error = err.Error()
		return row
	}
	return scoredRow(index, cells, smiles, d)
}

//Personal.AI order the ending
