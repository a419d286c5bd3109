//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the j2env module embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command and module identifier used across the
	// project. It appears in help text, default config paths, and the
	// environment variable prefix.
	Name = "j2env"
	// Description is a short, human-readable summary of the project used in
	// help output.
	Description = "Render templates from tag-aware environment variables"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}

// EnvPrefix returns the prefix of environment variables read by the CLI,
// e.g. "J2ENV_".
func EnvPrefix() string {
	return strings.ToUpper(Name) + "_"
}
