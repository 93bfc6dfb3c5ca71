package ui

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// NullText is shown for NULL cells.
const NullText = "NULL"

// ResultTable renders query rows. Cells equal to NullText are dimmed when
// styled. Without a terminal the output is tab-aligned plain text.
func (u *UI) ResultTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	if !u.styleOut() {
		var sb strings.Builder
		w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, strings.Join(headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		w.Flush()
		return strings.TrimRight(sb.String(), "\n")
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	nullStyle := cellStyle.Foreground(ColorMuted).Italic(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(rows) && col < len(rows[row]) && rows[row][col] == NullText {
				return nullStyle
			}
			return cellStyle
		})

	return t.String()
}

// RowCount renders the "(n rows)" footer.
func (u *UI) RowCount(n int) string {
	noun := "rows"
	if n == 1 {
		noun = "row"
	}
	return u.Muted(fmt.Sprintf("(%d %s)", n, noun))
}
