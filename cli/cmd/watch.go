package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/j2env/log"
	"github.com/ardnew/j2env/tag"
)

// maxSplay is the largest accepted splay in seconds.
const maxSplay = 900

// Watch re-renders every template whenever the resolved value of a watched
// variable changes.
type Watch struct {
	Options RenderFlags `embed:""`

	Watchlist  []string      `             help:"Variables whose changes trigger rendering"              placeholder:"NAME"    sep:","`
	Splay      int           `default:"0"  help:"Delay each render by a random 0 to SECONDS (max 900)"   placeholder:"SECONDS"`
	InitialRun bool          `             help:"Also execute the command after the first render"`
	Interval   time.Duration `default:"1s" help:"Delay between checks of the watched variables"`

	environ func() tag.Env
}

func (w *Watch) validate() error {
	var missing []string

	if len(w.Watchlist) == 0 {
		missing = append(missing, "watchlist")
	}

	if w.InitialRun && len(w.Options.Run) == 0 {
		missing = append(missing, "run")
	}

	if len(missing) > 0 {
		return ErrRequiredArgs.Wrapf("%s", strings.Join(missing, ", "))
	}

	if w.Splay < 0 || w.Splay > maxSplay {
		return ErrSplay.With(slog.Int("splay", w.Splay))
	}

	if w.Interval <= 0 {
		w.Interval = time.Second
	}

	if w.environ == nil {
		w.environ = tag.ProcessEnv
	}

	return nil
}

// Run executes the watch command. It returns when ctx is canceled or a
// watched variable disappears from the environment.
func (w *Watch) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	// One render cycle at a time; changes seen while a cycle is running are
	// picked up on the next check.
	var g errgroup.Group

	g.SetLimit(1)

	defer func(err *error) {
		cancel(*err)
		_ = g.Wait()
	}(&err)

	if err := w.validate(); err != nil {
		return err
	}

	j, err := w.Options.job(ctx)
	if err != nil {
		return err
	}

	var (
		last uint64
		seen bool
	)

	for {
		env := w.environ()

		sum, err := w.fingerprint(ctx, env, j.logger)
		if err != nil {
			return err
		}

		if !seen || sum != last {
			runCommand := seen || w.InitialRun

			if g.TryGo(func() error {
				w.cycle(ctx, j, env, runCommand)

				return nil
			}) {
				log.DebugContext(ctx, "watched variables changed",
					slog.Uint64("fingerprint", sum),
					slog.Bool("run", runCommand),
				)

				last, seen = sum, true
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.Interval):
		}
	}
}

// cycle renders every template after a random splay.
func (w *Watch) cycle(ctx context.Context, j *job, env tag.Env, runCommand bool) {
	if w.Splay > 0 {
		delay := time.Duration(rand.IntN(w.Splay+1)) * time.Second

		log.DebugContext(ctx, "splay", slog.Duration("delay", delay))

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	if err := j.run(ctx, env, runCommand); err != nil {
		log.WarnContext(ctx, "render cycle failed", log.Err(err))
	}
}

// fingerprint hashes the resolved values of the watched variables.
func (w *Watch) fingerprint(
	ctx context.Context,
	env tag.Env,
	logger log.Logger,
) (uint64, error) {
	for _, name := range w.Watchlist {
		if _, ok := env.Lookup(name); !ok {
			return 0, unknownKey(name, env)
		}
	}

	r, err := w.Options.Vars.resolver(env, logger)
	if err != nil {
		return 0, err
	}

	data, err := json.Marshal(r.ResolveVars(ctx, w.Watchlist, env))
	if err != nil {
		return 0, ErrJSONMarshal.Wrap(err)
	}

	return xxh3.Hash(data), nil
}

func unknownKey(name string, env tag.Env) error {
	err := ErrUnknownKey.With(slog.String("key", name))

	if m := fuzzy.Find(name, env.Names()); len(m) > 0 {
		return err.Wrapf("'%s' (did you mean '%s'?)", name, m[0].Str)
	}

	return err.Wrapf("'%s'", name)
}
