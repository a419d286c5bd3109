// Package marker defines the template delimiter sets and detects which set a
// piece of content uses.
package marker

import (
	"iter"
	"log/slog"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/j2env/pkg"
)

// DefaultSet is the name of the marker set used when none is configured.
const DefaultSet = "{{"

// configKey introduces an inline tag configuration segment.
const configKey = "config="

// Delims holds the eight delimiters handed to the template engine.
// Empty fields in an override mean "not set".
type Delims struct {
	BlockStart    string `json:"block_start"`
	BlockEnd      string `json:"block_end"`
	VariableStart string `json:"variable_start"`
	VariableEnd   string `json:"variable_end"`
	CommentStart  string `json:"comment_start"`
	CommentEnd    string `json:"comment_end"`
	ConfigStart   string `json:"config_start"`
	ConfigEnd     string `json:"config_end"`
}

// Set is a named bundle of delimiters.
type Set struct {
	Name string
	Delims
}

// sets is the fixed table, in detection order.
var sets = []Set{
	{Name: "{{", Delims: Delims{
		BlockStart: "{%", BlockEnd: "%}",
		VariableStart: "{{", VariableEnd: "}}",
		CommentStart: "{#", CommentEnd: "#}",
		ConfigStart: "{", ConfigEnd: "}",
	}},
	{Name: "{=", Delims: Delims{
		BlockStart: "<%", BlockEnd: "%>",
		VariableStart: "{=", VariableEnd: "=}",
		CommentStart: "<#", CommentEnd: "#>",
		ConfigStart: "<", ConfigEnd: ">",
	}},
	{Name: "<=", Delims: Delims{
		BlockStart: "<%", BlockEnd: "%>",
		VariableStart: "<=", VariableEnd: "=>",
		CommentStart: "<#", CommentEnd: "#>",
		ConfigStart: "<", ConfigEnd: ">",
	}},
	{Name: "[=", Delims: Delims{
		BlockStart: "[%", BlockEnd: "%]",
		VariableStart: "[=", VariableEnd: "=]",
		CommentStart: "[#", CommentEnd: "#]",
		ConfigStart: "[", ConfigEnd: "]",
	}},
	{Name: "(=", Delims: Delims{
		BlockStart: "(%", BlockEnd: "%)",
		VariableStart: "(=", VariableEnd: "=)",
		CommentStart: "(#", CommentEnd: "#)",
		ConfigStart: "(", ConfigEnd: ")",
	}},
}

// Sets returns an iterator over the predefined marker sets in detection order.
func Sets() iter.Seq[Set] {
	return slices.Values(sets)
}

// Names returns the names of the predefined marker sets in detection order.
func Names() []string {
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Name
	}

	return names
}

// Lookup returns the marker set with the given name.
func Lookup(name string) (Set, bool) {
	i := slices.IndexFunc(sets, func(s Set) bool { return s.Name == name })
	if i < 0 {
		return Set{}, false
	}

	return sets[i], true
}

// Config selects the marker set for a render pass.
type Config struct {
	// Set is the name of the configured marker set. Empty means [DefaultSet].
	Set string
	// Override replaces individual delimiters of whichever set is selected.
	Override Delims
	// Autodetect enables content-based selection of the marker set.
	Autodetect bool
}

// Validate reports an error if the configured set name is unknown.
func (c Config) Validate() error {
	if c.Set == "" {
		return nil
	}

	if _, ok := Lookup(c.Set); ok {
		return nil
	}

	err := pkg.ErrUnknownMarkerSet.With(slog.String("marker_set", c.Set))

	if m := fuzzy.Find(c.Set, Names()); len(m) > 0 {
		return err.Wrapf("%q (did you mean %q?)", c.Set, m[0].Str)
	}

	return err.Wrapf("%q (expected one of %s)", c.Set, strings.Join(Names(), " "))
}

// Detect returns the effective delimiters for content.
//
// Without autodetection the configured set is used. With autodetection, if
// content contains "config=", every set whose config-start delimiter directly
// follows "config=" somewhere in content is a candidate; otherwise every set
// whose variable-start and variable-end delimiters both occur in content is a
// candidate. The last candidate in table order wins. Non-empty overrides are
// applied on top of the result.
func (c Config) Detect(content string) Delims {
	base, ok := Lookup(c.Set)
	if !ok {
		base = sets[0]
	}

	d := base.Delims

	if c.Autodetect {
		inline := strings.Contains(content, configKey)

		for _, s := range sets {
			var match bool

			if inline {
				match = strings.Contains(content, configKey+s.ConfigStart)
			} else {
				match = strings.Contains(content, s.VariableStart) &&
					strings.Contains(content, s.VariableEnd)
			}

			if match {
				d = s.Delims
			}
		}
	}

	return d.apply(c.Override)
}

// apply returns d with every non-empty field of o substituted.
func (d Delims) apply(o Delims) Delims {
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&d.BlockStart, o.BlockStart},
		{&d.BlockEnd, o.BlockEnd},
		{&d.VariableStart, o.VariableStart},
		{&d.VariableEnd, o.VariableEnd},
		{&d.CommentStart, o.CommentStart},
		{&d.CommentEnd, o.CommentEnd},
		{&d.ConfigStart, o.ConfigStart},
		{&d.ConfigEnd, o.ConfigEnd},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}

	return d
}

// LogValue implements slog.LogValuer.
func (d Delims) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("block", d.BlockStart+" "+d.BlockEnd),
		slog.String("variable", d.VariableStart+" "+d.VariableEnd),
		slog.String("comment", d.CommentStart+" "+d.CommentEnd),
		slog.String("config", d.ConfigStart+" "+d.ConfigEnd),
	)
}
