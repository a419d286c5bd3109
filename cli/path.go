package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/j2env/pkg"
)

// baseConfig is the base name of the default configuration file.
const baseConfig = "config"

// configExts lists the extensions of the default configuration files in the
// order they are applied. Values from later files take precedence.
var configExts = []string{".json", ".yaml", ".yml"}

// defaultDirMode is the default permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// configPath returns the absolute path to a file or directory formed by joining
// the configuration directory path with the given path elements.
//
// If no elements are given, it is equivalent to calling [pkg.ConfigDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// configFiles returns the configuration files to load. An explicit --config
// on the command line replaces the default files.
func configFiles(args []string) (primary string, paths []string) {
	for arg := range longFlags(args) {
		if arg.name == "config" {
			if value, ok := arg.value(); ok {
				primary = value
			}
		}
	}

	if primary != "" {
		return primary, []string{primary}
	}

	for _, ext := range configExts {
		paths = append(paths, configPath(baseConfig+ext))
	}

	return paths[1], paths
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	err := os.MkdirAll(pkg.ConfigDir(), defaultDirMode)
	if err != nil {
		return err
	}

	return os.MkdirAll(pkg.CacheDir(), defaultDirMode)
}
