package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/andresuchdata/purchasing/backend-go/internal/reconcile"
	"github.com/andresuchdata/purchasing/backend-go/internal/sheet"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

func runReconcile(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected one lines file, got %d arguments", c.NArg())
	}

	window, err := parseWindowFlags(c.String("start"), c.String("end"))
	if err != nil {
		return err
	}

	lines, err := sheet.ReadLinesFile(c.Args().First())
	if err != nil {
		return err
	}
	if err := reconcile.ValidateLines(lines); err != nil {
		return err
	}

	return printResult(os.Stdout, reconcile.Reconcile(lines, window))
}

func parseWindowFlags(start, end string) (domain.PredictionWindow, error) {
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return domain.PredictionWindow{}, fmt.Errorf("invalid --start: %w", err)
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return domain.PredictionWindow{}, fmt.Errorf("invalid --end: %w", err)
	}
	return domain.PredictionWindow{StartDate: s, EndDate: e}, nil
}

func printResult(out io.Writer, result reconcile.Result) error {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ITEM", "NAME", "SUGGESTED", "ORDER", "STOCK DAYS", "ROTATION", "TOTAL", "SEVERITY"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, l := range result.Lines {
		row := reconcile.Present(l)
		table.Append([]string{
			row.ItemCode, row.ItemName, row.SuggestedQuantity, row.QuantityOrder,
			row.CurrentStockDays, row.Rotation, row.Total, row.Severity,
		})
	}
	table.Append([]string{"", "", "", "", "", "", reconcile.FormatThousands(result.TotalAmount), ""})
	table.Render()
	return nil
}
