package cmd

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	outputKey struct{}
	output    struct{ stdout, stderr io.Writer }
)

// WithOutput returns a new context.Context whose commands write their
// console output to stdout and stderr.
func WithOutput(ctx context.Context, stdout, stderr io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, output{stdout, stderr})
}

// outputFrom returns the writers stored by [WithOutput], or else those of the
// kong application, or else the process's standard streams.
func outputFrom(ctx context.Context) (stdout, stderr io.Writer) {
	if out, ok := ctx.Value(outputKey{}).(output); ok {
		return out.stdout, out.stderr
	}

	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Kong != nil {
		return ktx.Stdout, ktx.Stderr
	}

	return os.Stdout, os.Stderr
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// hard links.
type fileKey struct {
	dev uint64
	ino uint64
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: stat.Dev, ino: stat.Ino}, true
}

// fileSet collects absolute template paths, skipping any file already seen
// under another name.
type fileSet struct {
	seen  map[fileKey]struct{}
	paths []string
}

func newFileSet() *fileSet {
	return &fileSet{seen: make(map[fileKey]struct{})}
}

// add records path and reports whether it was new. Paths that cannot be
// stat'ed are kept so that rendering reports them.
func (s *fileSet) add(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	if info, err := os.Stat(abs); err == nil {
		if key, ok := makeFileKey(info); ok {
			if _, dup := s.seen[key]; dup {
				return false
			}

			s.seen[key] = struct{}{}
		}
	} else if slices.Contains(s.paths, abs) {
		return false
	}

	s.paths = append(s.paths, abs)

	return true
}

// findTemplates returns the templates to render. An explicit file list is
// used as given. Otherwise every directory of the search list is scanned,
// recursively if requested, for regular files whose names end in ext. Scanned
// results are sorted.
func findTemplates(
	filelist, searchlist []string,
	ext string,
	recursive bool,
) ([]string, error) {
	set := newFileSet()

	if len(filelist) > 0 {
		for _, path := range filelist {
			set.add(path)
		}

		return set.paths, nil
	}

	for _, dir := range searchlist {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != dir && !recursive {
					return filepath.SkipDir
				}

				return nil
			}

			if d.Type().IsRegular() && strings.HasSuffix(d.Name(), ext) {
				set.add(path)
			}

			return nil
		})
		if err != nil {
			return nil, ErrFindTemplates.Wrap(err)
		}
	}

	slices.Sort(set.paths)

	return set.paths, nil
}
