// Package cmd implements the j2env commands: render (the default), watch,
// resolve, tags, markers, and init.
//
// Render and watch share one engine. Each run resolves the process
// environment into a template context, renders every template found in the
// search list, writes each result beside its template (or a ".err" file on
// failure), and optionally executes a command once everything succeeded.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"

	// MarkerSetsIdentifier is the kong variable identifier listing the names
	// of the predefined marker sets.
	MarkerSetsIdentifier = "markerSets"
)
