package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/workbook"
)

var templateOutput string

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write a blank input workbook with GSTR_2B and BOOKS sheets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := writeFile(templateOutput, workbook.WriteTemplate); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", templateOutput)
		return nil
	},
}

func init() {
	templateCmd.Flags().StringVarP(&templateOutput, "output", "o", workbook.TemplateFilename, "Path of the template workbook")
}
