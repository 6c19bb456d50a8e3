package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/storage"
)

var (
	runOutput  string
	runAnalyze bool
)

var runCmd = &cobra.Command{
	Use:   "run <workbook>",
	Short: "Reconcile a workbook from the command line",
	Long: `Reads the GSTR_2B and BOOKS sheets of the workbook, matches them and writes
Reconciled_<name> next to the input (or to --output).

With --analyze nothing is written; the unmatched records and their likely cause are
printed as JSON instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		if !storage.AllowedFile(input) {
			return fmt.Errorf("unsupported file extension: %s", filepath.Ext(input))
		}

		_, logger, svc, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if runAnalyze {
			analysis, err := svc.AnalyzeFile(input)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(analysis)
		}

		output := runOutput
		if output == "" {
			output = filepath.Join(filepath.Dir(input), storage.OutputPrefix+filepath.Base(input))
		}
		summary, err := svc.ReconcileFile(input, output)
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), summary, output)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Path of the reconciled workbook")
	runCmd.Flags().BoolVar(&runAnalyze, "analyze", false, "Print unmatched records as JSON instead of writing a workbook")
}

func printSummary(w io.Writer, s *domain.Summary, output string) {
	fmt.Fprintf(w, "Reconciled workbook: %s\n", output)
	for _, l := range []domain.LedgerStats{s.GSTR2B, s.Books} {
		fmt.Fprintf(w, "  %-8s records %-5d matched %-5d unmatched %-5d header row %d (%s)",
			l.Sheet, l.Records, l.Matched, l.Unmatched, l.Header.Row, l.Header.Rule)
		if l.InvalidNumerics > 0 {
			fmt.Fprintf(w, ", %d invalid amounts read as 0", l.InvalidNumerics)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  matches: %d by invoice number, %d by amount (strategy %s, tolerance %s)\n",
		s.InvoiceMatches, s.FallbackMatches, s.Strategy, s.Tolerance)
}

// writeFile is shared by commands that produce a file from a writer function.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
