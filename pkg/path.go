package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

// Prefix returns the base name used to construct the configuration and cache
// directory paths.
//
// By default, Prefix is the base name of the executable file unless it matches
// one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with Name
//   - "^\.+" (dot-prefixed names): remove the dot prefix
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		exe, err := os.Executable()
		if err == nil {
			id = exe
		}

		ext := filepath.Ext(filepath.Base(id))
		id = strings.TrimSuffix(filepath.Base(id), ext)

		for rex, rep := range map[*regexp.Regexp]string{
			regexp.MustCompile(`^__debug_bin\d+$`): Name, // default output from dlv
			regexp.MustCompile(`^\.+`):             "",   // remove leading dot(s)
		} {
			id = rex.ReplaceAllString(id, rep)
		}

		if id == "" || ext == ".test" {
			id = Name
		}

		return id
	},
)

// ConfigDir returns the configuration directory path under the XDG config
// home.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return filepath.Join(xdg.ConfigHome, Prefix())
	},
)

// CacheDir returns the cache directory path used for transient files, such
// as profiler output.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return filepath.Join(xdg.CacheHome, Prefix())
	},
)
