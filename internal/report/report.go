// Package report renders account snapshots and journaled rejects.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/txengine/internal/domain"
)

// Header is the column row of both formats.
var Header = []string{"client", "available", "held", "total", "locked"}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	amountStyle = cellStyle.Align(lipgloss.Right)
	lockedStyle = cellStyle.Foreground(lipgloss.AdaptiveColor{Light: "#C1121F", Dark: "#FF5F5F"})
)

func row(s domain.Snapshot) []string {
	return []string{
		strconv.FormatUint(uint64(s.Client), 10),
		s.Available.String(),
		s.Held.String(),
		s.Total.String(),
		strconv.FormatBool(s.Locked),
	}
}

// WriteCSV writes one row per snapshot, in the given order, after a header row.
func WriteCSV(w io.Writer, snapshots []domain.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, s := range snapshots {
		if err := cw.Write(row(s)); err != nil {
			return errors.Wrapf(err, "write client %d", s.Client)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush report")
}

// RenderTable returns the snapshots as a bordered terminal table.
func RenderTable(snapshots []domain.Snapshot) string {
	rows := make([][]string, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, row(s))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Header...).
		Rows(rows...).
		StyleFunc(func(r, c int) lipgloss.Style {
			switch {
			case r == table.HeaderRow:
				return headerStyle
			case c == len(Header)-1 && r >= 0 && r < len(snapshots) && snapshots[r].Locked:
				return lockedStyle
			case c > 0 && c < len(Header)-1:
				return amountStyle
			default:
				return cellStyle
			}
		})

	return t.String()
}

// WriteTable writes RenderTable's output followed by a newline.
func WriteTable(w io.Writer, snapshots []domain.Snapshot) error {
	_, err := fmt.Fprintln(w, RenderTable(snapshots))
	return errors.Wrap(err, "write table")
}
