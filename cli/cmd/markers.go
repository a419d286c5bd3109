package cmd

import (
	"context"

	"github.com/ardnew/j2env/marker"
	"github.com/ardnew/j2env/tag"
)

// Markers shows the predefined marker sets, or the delimiters selected for
// each given template.
type Markers struct {
	Markers MarkerFlags `embed:""`

	Files []string `arg:"" help:"Templates to inspect" optional:"" type:"existingfile"`
}

// Run executes the markers command.
func (m *Markers) Run(ctx context.Context) error {
	stdout, _ := outputFrom(ctx)

	if len(m.Files) == 0 {
		var rows [][]string

		for s := range marker.Sets() {
			rows = append(rows, append([]string{s.Name}, delimColumns(s.Delims)...))
		}

		return printTable(stdout, append([]string{"SET"}, delimHeaders...), rows)
	}

	cfg, err := m.Markers.config()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(m.Files))

	for _, path := range m.Files {
		data, err := tag.ReadFile(path)
		if err != nil {
			return err
		}

		rows = append(rows, append([]string{path}, delimColumns(cfg.Detect(string(data)))...))
	}

	return printTable(stdout, append([]string{"FILE"}, delimHeaders...), rows)
}

var delimHeaders = []string{"BLOCK", "VARIABLE", "COMMENT", "CONFIG"}

func delimColumns(d marker.Delims) []string {
	return []string{
		d.BlockStart + " " + d.BlockEnd,
		d.VariableStart + " " + d.VariableEnd,
		d.CommentStart + " " + d.CommentEnd,
		d.ConfigStart + " " + d.ConfigEnd,
	}
}
