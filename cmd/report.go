/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/agrocoop/farmdesk/internal/db"
	"github.com/agrocoop/farmdesk/internal/export"
	"github.com/agrocoop/farmdesk/internal/reports"
	"github.com/agrocoop/farmdesk/internal/store"
)

const (
	productFlag  = "product"
	farmerIDFlag = "farmer-id"
	xlsxFlag     = "xlsx"
)

var reportFlags = map[string]cobraflags.Flag{
	productFlag: &cobraflags.StringFlag{
		Name:  productFlag,
		Value: "",
		Usage: "Product name fragment (product-production)",
	},
	farmerIDFlag: &cobraflags.StringFlag{
		Name:  farmerIDFlag,
		Value: "",
		Usage: "Farmer ID (farmer-statistics)",
	},
	xlsxFlag: &cobraflags.StringFlag{
		Name:  xlsxFlag,
		Value: "",
		Usage: "Write the report as a workbook to this path instead of printing it",
	},
}

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <name>",
	Short: "Print a report",
	Long: `Runs a report against the database and prints it as a table.

Available reports:
  ` + strings.Join(reports.Names(), "\n  ") + `

Examples:
  farmdesk report required-credits
  farmdesk report product-production --product wheat
  farmdesk report farmer-statistics --farmer-id 7 --xlsx stats.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	cobraflags.RegisterMap(reportCmd, reportFlags)
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	params := reports.Params{Product: strings.TrimSpace(reportFlags[productFlag].GetString())}
	if raw := strings.TrimSpace(reportFlags[farmerIDFlag].GetString()); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			return fmt.Errorf("invalid --%s %q", farmerIDFlag, raw)
		}
		params.FarmerID = id
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	conn, err := db.Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	engine := reports.NewEngine(store.NewReportRepository(conn), logger)
	table, err := engine.Table(cmd.Context(), args[0], params)
	if err != nil {
		return err
	}

	path := strings.TrimSpace(reportFlags[xlsxFlag].GetString())
	if path == "" {
		return writeText(cmd.OutOrStdout(), table)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook file: %w", err)
	}
	if err := export.Write(f, table); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(table.Rows), path)
	return nil
}

// writeText prints the table with aligned columns, followed by a row count.
func writeText(w io.Writer, table reports.Table) error {
	fmt.Fprintln(w, table.Title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		_, err := fmt.Fprintln(w, "no data")
		return err
	}
	_, err := fmt.Fprintf(w, "%d rows\n", len(table.Rows))
	return err
}
