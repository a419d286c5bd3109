package tag

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/klauspost/readahead"
	"github.com/tidwall/jsonc"

	"github.com/ardnew/j2env/pkg"
	"github.com/ardnew/j2env/tree"
)

var (
	// hashrocket detects the legacy `"key" => value` form.
	hashrocket    = regexp.MustCompile(`"\s*=>\s*["{\[]`)
	hashrocketSep = regexp.MustCompile(`"\s*=>\s*`)
)

// ParseJSON decodes the payload as JSON.
func ParseJSON(_ context.Context, req Request) (any, error) {
	src := req.Value

	if hashrocket.MatchString(src) {
		src = hashrocketSep.ReplaceAllString(src, `":`)
	}

	v, err := tree.Decode([]byte(src))
	if err != nil {
		return nil, pkg.ErrInvalidJSON.Wrap(err)
	}

	return v, nil
}

// ParseJSONFile reads the file named by the payload and decodes it as JSON.
// Comments and trailing commas are tolerated.
func ParseJSONFile(_ context.Context, req Request) (any, error) {
	data, err := ReadFile(req.Value)
	if err != nil {
		return nil, err
	}

	v, err := tree.Decode(jsonc.ToJSON(data))
	if err != nil {
		return nil, pkg.ErrInvalidJSON.Wrap(err).With(slog.String("path", req.Value))
	}

	return v, nil
}

// ParseBase64 decodes the payload as standard base64.
func ParseBase64(_ context.Context, req Request) (any, error) {
	b, err := base64.StdEncoding.DecodeString(req.Value)
	if err != nil {
		return nil, pkg.ErrInvalidBase64.Wrap(err)
	}

	return string(b), nil
}

// ParseList splits the payload on commas and trims each element.
func ParseList(_ context.Context, req Request) (any, error) {
	parts := strings.Split(req.Value, ",")
	out := make([]any, len(parts))

	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}

	return out, nil
}

// ParseFile returns the contents of the file named by the payload.
func ParseFile(_ context.Context, req Request) (any, error) {
	data, err := ReadFile(req.Value)
	if err != nil {
		return nil, err
	}

	return string(data), nil
}

// ParseEscape returns the payload verbatim.
func ParseEscape(_ context.Context, req Request) (any, error) {
	return req.Value, nil
}

// ReadFile returns the contents of the file at path.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkg.ErrReadFile.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, pkg.ErrReadFile.Wrap(err).With(slog.String("path", path))
	}

	return data, nil
}
