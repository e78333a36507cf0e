package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/lipinski-analyzer/internal/application/analysis"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// DetectOptions holds flags of the detect command.
type DetectOptions struct {
	Input   string
	Columns []string
}

// NewDetectCmd creates the detect command.
func NewDetectCmd() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Find the SMILES column of a table",
		Long: "Reports which column the analyzer would read SMILES from, and every column\n" +
			"that matched. Column names come from --columns or from the header of --input.",
		Example: "  lipinski detect --columns ID,Name,Canonical_SMILES\n" +
			"  lipinski detect -i library.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Input, "input", "i", "", "table whose header is inspected")
	flags.StringSliceVar(&opts.Columns, "columns", nil, "comma-separated column names")
	cmd.MarkFlagsMutuallyExclusive("input", "columns")

	return cmd
}

func runDetect(cmd *cobra.Command, opts *DetectOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	input := &analysis.DetectInput{Columns: opts.Columns}
	switch {
	case len(opts.Columns) > 0:
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeValidation, "cannot read input file").WithDetail("file=" + opts.Input)
		}
		input.FileName = filepath.Base(opts.Input)
		input.Content = content
	default:
		return errors.InvalidParam("one of --input or --columns is required")
	}

	ctx, cancel := cliCtx.commandContext(cmd.Context())
	defer cancel()

	svc, release, err := cliCtx.Service(ctx)
	if err != nil {
		return err
	}
	defer release()

	res, err := svc.DetectColumn(ctx, input)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch cliCtx.OutputFormat {
	case OutputJSON:
		return printJSON(cmd, res.Response())
	case OutputText:
		fmt.Fprintln(w, res.Column)
		return nil
	}

	fmt.Fprintf(w, "%s %s\n", color.New(color.Bold).Sprint("SMILES column:"), color.GreenString(res.Column))
	if len(res.Candidates) > 1 {
		fmt.Fprintln(w)
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Column", "Match", "Term"})
		for _, c := range res.Candidates {
			table.Append([]string{c.Column, string(c.Phase), c.Term})
		}
		table.Render()
	}
	if !cliCtx.Verbose {
		return nil
	}
	fmt.Fprintf(w, "\nColumns: %s\n", strings.Join(res.Columns, ", "))
	return nil
}

//Personal.AI order the ending
