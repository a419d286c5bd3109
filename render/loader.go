package render

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/nikolalohinski/gonja/v2/loaders"

	"github.com/ardnew/j2env/tag"
)

// loader serves the template being rendered from memory and every other
// template (includes, imports, extends) from the filesystem, relative to
// the directory of the including template or absolute.
type loader struct {
	root    string
	content string
	dir     string
	alias   alias
}

var _ loaders.Loader = (*loader)(nil)

func newLoader(root, content, dir string, a alias) *loader {
	if dir == "" {
		dir = "."
	}

	return &loader{root: root, content: content, dir: dir, alias: a}
}

func (l *loader) Read(path string) (io.Reader, error) {
	if path == l.root {
		return strings.NewReader(l.alias.in(l.content)), nil
	}

	data, err := tag.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return strings.NewReader(l.alias.in(string(data))), nil
}

func (l *loader) Resolve(path string) (string, error) {
	if path == l.root || filepath.IsAbs(path) {
		return path, nil
	}

	return filepath.Join(l.dir, path), nil
}

func (l *loader) Inherit(from string) (loaders.Loader, error) {
	if from == l.root || from == "" {
		return l, nil
	}

	resolved, err := l.Resolve(from)
	if err != nil {
		return nil, err
	}

	return &loader{
		root:    l.root,
		content: l.content,
		dir:     filepath.Dir(resolved),
		alias:   l.alias,
	}, nil
}
