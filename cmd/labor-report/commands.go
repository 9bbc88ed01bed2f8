package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"labordash/internal/dashboard"
	"labordash/internal/exporter"
	"labordash/pkg/contracts/domain"
)

type selectionFlags struct {
	year   int
	region string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.year, "year", 0, "year to show; defaults to the most recent year")
	cmd.Flags().StringVar(&f.region, "region", "", "region to show; defaults to the aggregate")
}

func (f *selectionFlags) selection() domain.Selection {
	return domain.Selection{Year: f.year, Region: f.region}
}

func (c *cli) newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(c.out)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	return table
}

func newSummaryCmd(c *cli) *cobra.Command {
	var sel selectionFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the KPI panel and the regional comparison",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vm, err := c.svc.Dashboard(cmd.Context(), sel.selection())
			if err != nil {
				return err
			}
			c.printSummary(vm)
			return nil
		},
	}
	sel.register(cmd)
	return cmd
}

func (c *cli) printSummary(vm dashboard.ViewModel) {
	fmt.Fprintln(c.out, vm.Title)

	if vm.KPI.Empty {
		fmt.Fprintln(c.out, vm.KPI.Notice)
	} else {
		kpis := c.newTable("지표", "값")
		kpis.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
		for _, kpi := range vm.KPI.Values {
			kpis.Append([]string{kpi.Label, kpi.Display})
		}
		kpis.Render()
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, vm.Comparison.Title)
	if vm.Comparison.Empty {
		fmt.Fprintln(c.out, vm.Comparison.Notice)
		return
	}

	rates := c.newTable("지역", "고용률 (%)", "실업률 (%)")
	rates.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
	for _, r := range vm.Comparison.Rates {
		rates.Append([]string{r.Region, dashboard.FormatRate(r.EmploymentRate), dashboard.FormatRate(r.UnemploymentRate)})
	}
	rates.Render()
}

func newOptionsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the selectable years and regions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := c.svc.Options(cmd.Context())
			if err != nil {
				return err
			}

			years := c.newTable("년도")
			for _, y := range opts.Years {
				years.Append([]string{strconv.Itoa(y)})
			}
			years.Render()

			regions := c.newTable("지역")
			for _, r := range opts.Regions {
				regions.Append([]string{r})
			}
			regions.Render()

			fmt.Fprintf(c.out, "default: %d %s\n", opts.Default.Year, opts.Default.Region)
			return nil
		},
	}
}

func newExportCmd(c *cli) *cobra.Command {
	var (
		sel    selectionFlags
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the table as CSV or the selected view as an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			name, err := c.svc.Export(cmd.Context(), &buf, f, sel.selection())
			if err != nil {
				return err
			}
			if out == "" {
				out = name
			}
			if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			fmt.Fprintf(c.out, "wrote %s (%d bytes)\n", out, buf.Len())
			return nil
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVar(&format, "format", string(exporter.FormatCSV), "export format (csv or xlsx)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path; defaults to the suggested file name")
	return cmd
}
