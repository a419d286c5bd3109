package render

import (
	"errors"
	"io/fs"
	"regexp"
	"strings"

	"github.com/ardnew/j2env/pkg"
)

var lineNumber = regexp.MustCompile(`(?i)\bline\s*:?\s*(\d+)`)

// undefinedText are the diagnostics the engine raises in strict mode for
// names, attributes and items that do not exist.
var undefinedText = []string{
	"unable to evaluate name",
	"undefined",
	"not defined",
}

var missingMember = regexp.MustCompile(`(?i)\b(attribute '[^']*'|item -?\d+) not found`)

// translate maps an engine error onto the domain errors. Errors raised
// while compiling are syntax errors; errors raised while executing are
// classified by their diagnostic text. source is the text handed to the
// engine, which it echoes in syntax errors.
func translate(err error, compiling bool, source string, a alias) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return pkg.ErrTemplateNotFound.Wrap(err)
	}

	msg := err.Error()
	if source != "" {
		msg = strings.Replace(msg, "failed to parse template '"+source+"': ", "", 1)
	}

	msg = a.out(msg)
	low := strings.ToLower(msg)

	if strings.Contains(low, "no such file") {
		return pkg.ErrTemplateNotFound.Wrapf("%s", msg)
	}

	var kind *pkg.Error

	switch {
	case compiling:
		kind = pkg.ErrTemplateSyntax
	case containsAny(low, undefinedText), missingMember.MatchString(msg):
		kind = pkg.ErrUndefinedVariable
	case strings.Contains(low, "filter"):
		kind = pkg.ErrFilterArgument
	default:
		return pkg.ErrRender.Wrapf("%s", msg)
	}

	// the engine reports line 0 when it has no position
	if m := lineNumber.FindStringSubmatch(msg); m != nil && m[1] != "0" {
		return kind.Wrapf("%s at line: %s", msg, m[1])
	}

	return kind.Wrapf("%s", msg)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
