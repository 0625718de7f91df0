package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hrkey/internal/domain/reports"
)

// nineBoxRows lists grid positions top to bottom. The top row holds high
// potential and the left column low performance.
var nineBoxRows = [3][3]int{
	{1, 2, 3},
	{4, 5, 6},
	{7, 8, 9},
}

var (
	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Width(12).
			Align(lipgloss.Center)
	highlightStyle = cellStyle.BorderForeground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle      = lipgloss.NewStyle().Bold(true)
)

// RenderNineBox draws the grid counts with a header naming the round.
func RenderNineBox(report reports.NineBoxReport) string {
	var b strings.Builder

	header := "Round " + report.RoundCode
	if report.ManagerName != nil && *report.ManagerName != "" {
		header += " / " + *report.ManagerName
	}
	b.WriteString(boldStyle.Render(header))
	b.WriteString("\n")

	rows := make([]string, 0, len(nineBoxRows))
	for _, row := range nineBoxRows {
		cells := make([]string, 0, len(row))
		for _, pos := range row {
			count := report.Counts[strconv.Itoa(pos)]
			style := cellStyle
			if count > 0 {
				style = highlightStyle
			}
			cells = append(cells, style.Render(fmt.Sprintf("#%d\n%d", pos, count)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	b.WriteString("\n")

	placed := 0
	for _, n := range report.Counts {
		placed += n
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("potential ↑  performance →  total %d, unplaced %d", report.Total, report.Total-placed)))
	return b.String()
}
