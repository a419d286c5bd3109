package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/ardnew/j2env/log"
	"github.com/ardnew/j2env/pkg"
	"github.com/ardnew/j2env/render"
	"github.com/ardnew/j2env/tag"
)

// outputMode is the mode of written files before the umask is applied.
const outputMode os.FileMode = 0o666

// job renders a set of templates and reports each result.
type job struct {
	flags  RenderFlags
	report *reporter
	stderr io.Writer
	logger log.Logger
}

// result is the outcome of rendering one template.
type result struct {
	template string
	output   string
	content  string
	err      error
}

func (r result) failed() bool { return r.err != nil }

// run resolves env, renders every template, writes the results, and executes
// the post-render command when runCommand is set and nothing failed.
func (j *job) run(ctx context.Context, env tag.Env, runCommand bool) error {
	templates, err := findTemplates(
		j.flags.Filelist,
		j.flags.Searchlist,
		j.flags.Extension,
		j.flags.Recursive,
	)
	if err != nil {
		return err
	}

	vars, err := j.flags.Vars.context(ctx, env, j.logger)
	if err != nil {
		return err
	}

	renderer := j.flags.renderer(env, j.logger)

	var failed int

	if j.flags.TestFirst {
		results := make([]result, 0, len(templates))

		for _, path := range templates {
			res := j.render(ctx, renderer, path, vars)
			if res.failed() {
				failed++
			}

			results = append(results, res)
		}

		for _, res := range results {
			if err := j.finish(res, failed > 0); err != nil {
				failed++
			}
		}
	} else {
		for _, path := range templates {
			res := j.render(ctx, renderer, path, vars)

			if err := j.finish(res, false); err != nil || res.failed() {
				failed++
			}
		}
	}

	if failed > 0 {
		return ErrRenderFailed.With(
			slog.Int("failed", failed),
			slog.Int("templates", len(templates)),
		)
	}

	if runCommand && len(j.flags.Run) > 0 {
		return j.execute(ctx, env)
	}

	return nil
}

// render renders one template and computes where its result goes.
func (j *job) render(
	ctx context.Context,
	renderer *render.Renderer,
	path string,
	vars tag.Context,
) result {
	res := result{
		template: path,
		output:   strings.TrimSuffix(path, j.flags.Extension),
	}

	res.content, res.err = renderer.RenderFile(ctx, path, vars)
	if res.err != nil {
		j.logger.DebugContext(ctx, "render failed",
			slog.String("template", path),
			log.Err(res.err),
		)

		res.output += ".err"
		res.content = j.describe(res.err)
	}

	return res
}

// describe returns the text written for a failed render.
func (j *job) describe(err error) string {
	if j.flags.Vars.Stacktrace {
		return err.Error() + "\n\n" + pkg.Trace(err)
	}

	return err.Error()
}

// finish writes one result and reports it. With skip set nothing is written.
func (j *job) finish(res result, skip bool) error {
	var (
		err     error
		written = statusSkipped
	)

	switch {
	case skip || j.flags.Noop:

	case res.failed() && j.flags.Stderr:
		res.output = "<stderr>"
		_, err = io.WriteString(j.stderr, res.template+": "+res.content+"\n")
		written = statusSuccess

	default:
		err = j.write(res)
		written = statusSuccess
	}

	if err != nil {
		written = statusFailed
	}

	j.report.result(res, written, err)

	return err
}

// write stores the content of res in its output file.
func (j *job) write(res result) error {
	err := os.WriteFile(res.output, []byte(res.content), outputMode)
	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", res.output))
	}

	if j.flags.CopyFilePermissions && !res.failed() {
		return copyPermissions(res.template, res.output)
	}

	return nil
}

// copyPermissions applies the mode and, where it differs, the ownership of
// src to dst.
func copyPermissions(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return ErrCopyPermissions.Wrap(err).With(slog.String("file", src))
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return ErrCopyPermissions.Wrap(err).With(slog.String("file", dst))
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}

	out, err := os.Stat(dst)
	if err != nil {
		return ErrCopyPermissions.Wrap(err).With(slog.String("file", dst))
	}

	if cur, ok := out.Sys().(*syscall.Stat_t); ok &&
		cur.Uid == stat.Uid && cur.Gid == stat.Gid {
		return nil
	}

	if err := os.Chown(dst, int(stat.Uid), int(stat.Gid)); err != nil {
		return ErrCopyPermissions.Wrap(err).With(slog.String("file", dst))
	}

	return nil
}

// execute runs the post-render command with env as its environment.
func (j *job) execute(ctx context.Context, env tag.Env) error {
	argv := j.flags.Run
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = j.report.stdout()
	cmd.Stderr = j.stderr

	for _, name := range env.Names() {
		cmd.Env = append(cmd.Env, name+"="+env[name])
	}

	err := cmd.Run()

	j.report.command(argv, err)

	if err == nil {
		return nil
	}

	failure := ErrRunCommand.Wrap(err).With(slog.String("command", strings.Join(argv, " ")))

	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return failure.With(slog.Int("exit", exit.ExitCode()))
	}

	return failure
}
