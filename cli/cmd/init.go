package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/j2env/log"
	"github.com/ardnew/j2env/profile"
)

// Init generates a configuration file with the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.Marshal(settings(ktx))
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	err = os.MkdirAll(filepath.Dir(confPath), 0o700)
	if err == nil {
		err = os.WriteFile(confPath, data, 0o600)
	}

	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// settings collects the value of every flag of the application, keyed by
// the flag name in underscore form. A flag shared by several commands is
// taken from the first command declaring it.
func settings(ktx *kong.Context) yaml.MapSlice {
	var doc yaml.MapSlice

	seen := make(map[string]struct{})
	ignore := []string{"help", "version", "config", "force"}

	var walk func(*kong.Node)

	walk = func(node *kong.Node) {
		for _, flag := range node.Flags {
			if _, dup := seen[flag.Name]; dup || flag.Hidden ||
				slices.Contains(ignore, flag.Name) ||
				strings.HasPrefix(flag.Name, profile.Tag+"-") {
				continue
			}

			seen[flag.Name] = struct{}{}

			if val := flagValue(ktx, flag); val != nil {
				doc = append(doc, yaml.MapItem{
					Key:   strings.ReplaceAll(flag.Name, "-", "_"),
					Value: val,
				})
			}
		}

		for _, child := range node.Children {
			walk(child)
		}
	}

	walk(ktx.Model.Node)

	return doc
}

// flagValue returns the configuration file form of a flag's value, or nil
// if the flag is unset.
func flagValue(ktx *kong.Context, flag *kong.Flag) any {
	val := ktx.FlagValue(flag)
	if val == nil {
		return nil
	}

	if d, ok := val.(time.Duration); ok {
		return d.String()
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.String:
		if rv.Len() == 0 {
			return nil
		}

		return rv.String()

	case reflect.Slice:
		if rv.Len() == 0 {
			return nil
		}

	case reflect.Bool:
		return rv.Bool()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	}

	return val
}
