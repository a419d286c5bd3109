package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/j2env/log"
	"github.com/ardnew/j2env/tag"
)

// Render renders every template once.
type Render struct {
	Options RenderFlags `embed:""`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	j, err := r.Options.job(ctx)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "rendering templates",
		slog.Any("searchlist", r.Options.Searchlist),
		slog.Any("filelist", r.Options.Filelist),
		slog.String("extension", r.Options.Extension),
	)

	return j.run(ctx, tag.ProcessEnv(), true)
}
