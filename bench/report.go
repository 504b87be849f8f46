package bench

import (
	"fmt"
	"io"
	"math"

	"github.com/olekukonko/tablewriter"
)

func formatSteps(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.6f", v)
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	return table
}

// RenderResults 以表格輸出單一 bench file 的結果
func RenderResults(w io.Writer, results []Result) {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		height := "N/A"
		if res.Height > 0 {
			height = fmt.Sprintf("%d", res.Height)
		}
		rows = append(rows, []string{
			res.Impl,
			fmt.Sprintf("%d", res.Runs),
			fmt.Sprintf("%.3f", res.AvgMs),
			fmt.Sprintf("%.3f", res.MinMs),
			fmt.Sprintf("%.3f", res.MaxMs),
			fmt.Sprintf("%.2f", res.Throughput()),
			formatSteps(res.AvgSteps),
			height,
		})
	}

	table := newTable(w, []string{"Impl", "Runs", "Avg(ms)", "Min(ms)", "Max(ms)", "Ops/s", "AvgSteps", "Height"})
	table.AppendBulk(rows)
	table.Render()
}

// RenderOutcome 輸出參考重播的操作結果統計
func RenderOutcome(w io.Writer, o Outcome) {
	table := newTable(w, []string{"Op", "True", "False"})
	table.AppendBulk([][]string{
		{"Insert", fmt.Sprintf("%d", o.Inserted), fmt.Sprintf("%d", o.Duplicates)},
		{"Erase", fmt.Sprintf("%d", o.Erased), fmt.Sprintf("%d", o.Missing)},
		{"Contains", fmt.Sprintf("%d", o.Hits), fmt.Sprintf("%d", o.Misses)},
	})
	table.Render()
}

// RenderAggregate 以表格輸出多個 bench file 的匯總
func RenderAggregate(w io.Writer, aggs []Aggregate) {
	rows := make([][]string, 0, len(aggs))
	for _, a := range aggs {
		rows = append(rows, []string{
			a.Impl,
			fmt.Sprintf("%d", a.Files),
			fmt.Sprintf("%d", a.TotalRuns),
			fmt.Sprintf("%.3f", a.AvgMs),
			fmt.Sprintf("%.3f", a.MinMs),
			fmt.Sprintf("%.3f", a.MaxMs),
			fmt.Sprintf("%.2f", a.OpsPerSec),
			formatSteps(a.AvgSteps),
		})
	}

	table := newTable(w, []string{"Impl", "Files", "Total Runs", "Avg(ms)", "Min(ms)", "Max(ms)", "Avg Ops/s", "AvgSteps"})
	table.AppendBulk(rows)
	table.Render()
}
