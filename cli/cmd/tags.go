package cmd

import (
	"context"
	"strings"

	"github.com/ardnew/j2env/tag"
)

// Tags lists the registered tags.
type Tags struct{}

// Run executes the tags command.
func (t *Tags) Run(ctx context.Context) error {
	stdout, _ := outputFrom(ctx)

	return printTable(stdout,
		[]string{"TAG", "CONFIG", "NESTABLE", "CONFIG VARIABLE", "TOKEN VARIABLE"},
		tagRows(tag.Default()),
	)
}

func tagRows(reg *tag.Registry) [][]string {
	var rows [][]string

	for k := range reg.Kinds() {
		configVar, tokenVar := "-", "-"

		if k.Configurable() {
			configVar = k.ConfigVar()

			if strings.Contains(k.Schema, `"token"`) {
				tokenVar = k.TokenVar()
			}
		}

		rows = append(rows, []string{
			k.Prefix(),
			yesNo(k.Configurable()),
			yesNo(k.Nestable),
			configVar,
			tokenVar,
		})
	}

	return rows
}
