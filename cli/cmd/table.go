package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// printTable writes rows under headers as a bordered table.
func printTable(w io.Writer, headers []string, rows [][]string) error {
	re := lipgloss.NewRenderer(w)
	header := re.NewStyle().Bold(true).Padding(0, 1)
	cell := re.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(re.NewStyle()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}

			return cell
		})

	_, err := fmt.Fprintln(w, t.String())

	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
