package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"staffhub/internal/domain/reports"
)

func newMatrixCmd(opts *options) *cobra.Command {
	var exportPath string
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Show the effective role by permission matrix",
		Long: `Show which roles are granted each permission, including the super admin
override.

With --export the matrix is written to a file instead. The format follows the
extension: .csv or .pdf.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix := reports.BuildMatrix(opts.table)
			if exportPath != "" {
				return exportMatrix(cmd, matrix, exportPath)
			}
			if done, err := opts.formatOutput(cmd.OutOrStdout(), matrix); done {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			header := []string{"PERMISSION"}
			for _, role := range matrix.Roles {
				header = append(header, strings.ToUpper(string(role)))
			}
			fmt.Fprintln(w, strings.Join(header, "\t"))
			for _, row := range matrix.Rows {
				cells := []string{string(row.Permission)}
				for _, granted := range row.Grants {
					if granted {
						cells = append(cells, allowFmt("yes"))
					} else {
						cells = append(cells, dimFmt("-"))
					}
				}
				fmt.Fprintln(w, strings.Join(cells, "\t"))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&exportPath, "export", "", "Write the matrix to a .csv or .pdf file")
	return cmd
}

func exportMatrix(cmd *cobra.Command, matrix reports.Matrix, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".pdf" {
		return fmt.Errorf("unsupported export format %q (use .csv or .pdf)", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if ext == ".csv" {
		err = matrix.WriteCSV(f)
	} else {
		err = matrix.WritePDF(f, time.Now().UTC())
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("export matrix: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
