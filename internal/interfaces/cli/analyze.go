package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/lipinski-analyzer/internal/application/analysis"
	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/tabular"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// AnalyzeOptions holds flags of the analyze command.
type AnalyzeOptions struct {
	Input       string
	Column      string
	Sheet       string
	Output      string
	Rows        int
	Concurrency int
	Export      bool
}

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute Lipinski descriptors for every compound in a table",
		Long: "Reads a .csv, .tsv, .txt or .xlsx table, detects the SMILES column (or uses --column),\n" +
			"and prints the summary, the result distribution and the first rows.\n" +
			"With --output the full table plus the computed columns is written to a file.",
		Example: "  lipinski analyze -i library.csv\n" +
			"  lipinski analyze -i library.xlsx --sheet Hits --output results.xlsx\n" +
			"  lipinski analyze -i library.csv --rows 0 -f json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Input, "input", "i", "", "compound table to analyze (required)")
	flags.StringVar(&opts.Column, "column", "", "SMILES column name (default: detected)")
	flags.StringVar(&opts.Sheet, "sheet", "", "workbook sheet (default: first sheet)")
	flags.StringVarP(&opts.Output, "output", "o", "", "write the augmented table to this .csv, .tsv or .xlsx file")
	flags.IntVar(&opts.Rows, "rows", -1, "number of rows to print (default: analysis.preview_rows from config)")
	flags.IntVar(&opts.Concurrency, "concurrency", 0, "descriptor workers (default: analysis.concurrency from config)")
	flags.BoolVar(&opts.Export, "export", false, "upload the results to object storage (requires minio.enabled)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *AnalyzeOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	logger := cliCtx.Logger

	var outFormat tabular.Format
	if opts.Output != "" {
		if outFormat, err = tabular.FormatFromName(opts.Output); err != nil {
			return err
		}
	}
	if opts.Concurrency < 0 {
		return errors.InvalidParam("--concurrency must not be negative")
	}
	if opts.Concurrency > 0 {
		cliCtx.Config.Analysis.Concurrency = opts.Concurrency
	}
	rows := opts.Rows
	if rows < 0 {
		rows = cliCtx.Config.Analysis.PreviewRows
	}

	content, err := os.ReadFile(opts.Input)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "cannot read input file").WithDetail("file=" + opts.Input)
	}

	ctx, cancel := cliCtx.commandContext(cmd.Context())
	defer cancel()

	svc, release, err := cliCtx.Service(ctx)
	if err != nil {
		return err
	}
	defer release()

	res, err := svc.Analyze(ctx, &analysis.AnalyzeInput{
		FileName:       filepath.Base(opts.Input),
		Content:        content,
		ColumnOverride: opts.Column,
		Sheet:          opts.Sheet,
		Export:         opts.Export,
		ExportFormat:   tabular.FormatCSV,
		Source:         analysis.SourceCLI,
	})
	if err != nil {
		return err
	}

	if opts.Output != "" {
		if err := writeReport(opts.Output, outFormat, res.Report); err != nil {
			return err
		}
		logger.Info("Wrote analysis results",
			logging.String("file", opts.Output),
			logging.Int("rows", len(res.Report.Rows)))
	}

	switch cliCtx.OutputFormat {
	case OutputJSON:
		return printJSON(cmd, res.Response(rows))
	case OutputText:
		printAnalysisText(cmd.OutOrStdout(), res, rows, opts.Output)
	default:
		printAnalysisTables(cmd.OutOrStdout(), res, rows, opts.Output)
	}
	return nil
}

// writeReport renders the whole report before touching the file so a failed
// render leaves no partial output.
func writeReport(path string, f tabular.Format, report *compound.AnalysisReport) error {
	var buf bytes.Buffer
	if err := tabular.Write(&buf, f, report); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "cannot write output file").WithDetail("file=" + path)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Rendering
// ─────────────────────────────────────────────────────────────────────────────

func printAnalysisTables(w io.Writer, res *analysis.AnalyzeResult, rows int, output string) {
	s := res.Summary
	fmt.Fprintf(w, "%s %s (SMILES column: %s)\n\n",
		color.New(color.Bold).Sprint("Analyzed"), res.Run.FileName, res.Report.SmilesColumn)

	summary := tablewriter.NewWriter(w)
	summary.SetHeader([]string{"Total", "Valid", "Invalid", "Pass", "Fail", "Valid %", "Pass Rate %"})
	summary.Append([]string{
		strconv.Itoa(s.Total),
		strconv.Itoa(s.Valid),
		strconv.Itoa(s.Invalid),
		strconv.Itoa(s.Pass),
		strconv.Itoa(s.Fail),
		formatPercent(s.ValidPercent),
		formatPercent(s.PassRate),
	})
	summary.Render()
	fmt.Fprintln(w)

	dist := tablewriter.NewWriter(w)
	dist.SetHeader([]string{"Result", "Count"})
	for _, d := range s.Distribution {
		dist.Append([]string{colorResult(d.Result), strconv.Itoa(d.Count)})
	}
	dist.Render()

	if preview := previewRows(res.Report, rows); len(preview) > 0 {
		fmt.Fprintf(w, "\nFirst %d of %d rows:\n", len(preview), len(res.Report.Rows))
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"#", "SMILES", "MolWt", "LogP", "HBD", "HBA", "Violations", "Result"})
		for _, row := range preview {
			table.Append(rowCells(row))
		}
		table.Render()
	}

	printFooter(w, res, output)
}

func printAnalysisText(w io.Writer, res *analysis.AnalyzeResult, rows int, output string) {
	s := res.Summary
	fmt.Fprintf(w, "File: %s\n", res.Run.FileName)
	fmt.Fprintf(w, "SMILES column: %s\n", res.Report.SmilesColumn)
	fmt.Fprintf(w, "Total: %d\n", s.Total)
	fmt.Fprintf(w, "Valid: %d (%s%%)\n", s.Valid, formatPercent(s.ValidPercent))
	fmt.Fprintf(w, "Invalid: %d\n", s.Invalid)
	fmt.Fprintf(w, "Pass: %d\n", s.Pass)
	fmt.Fprintf(w, "Fail: %d\n", s.Fail)
	fmt.Fprintf(w, "Pass rate: %s%%\n", formatPercent(s.PassRate))
	for _, row := range previewRows(res.Report, rows) {
		fmt.Fprintln(w, strings.Join(rowCells(row), "\t"))
	}
	printFooter(w, res, output)
}

func printFooter(w io.Writer, res *analysis.AnalyzeResult, output string) {
	if output != "" {
		fmt.Fprintf(w, "\nResults written to %s\n", output)
	}
	if res.ExportKey != "" {
		fmt.Fprintf(w, "Exported to object storage: %s\n", res.ExportKey)
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "%s %s\n", color.YellowString("Warning:"), warn)
	}
}

func previewRows(report *compound.AnalysisReport, n int) []compound.AnalysisRow {
	if n <= 0 || report == nil {
		return nil
	}
	if n > len(report.Rows) {
		n = len(report.Rows)
	}
	return report.Rows[:n]
}

// rowCells numbers rows from 1 as they appear in the source table.
func rowCells(row compound.AnalysisRow) []string {
	cells := []string{strconv.Itoa(row.Index + 1), row.SMILES, "", "", "", "", "", colorResult(row.Result)}
	if d := row.Descriptors; d != nil {
		cells[2] = compound.FormatFloat(d.MolWt)
		cells[3] = compound.FormatFloat(d.LogP)
		cells[4] = strconv.Itoa(d.HDonors)
		cells[5] = strconv.Itoa(d.HAcceptors)
		cells[6] = strconv.Itoa(row.ViolationCount)
	}
	return cells
}

func colorResult(r compound.Result) string {
	switch r {
	case compound.ResultPass:
		return color.GreenString(string(r))
	case compound.ResultFail:
		return color.RedString(string(r))
	}
	return color.YellowString(string(r))
}

func formatPercent(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

//Personal.AI order the ending
