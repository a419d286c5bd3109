package render

import "strings"

// blockAlias replaces a block start the engine cannot lex. The engine
// compiles the block start into a regular expression escaping only square
// brackets, so a start such as "(%" must be hidden from it.
const blockAlias = "\uE000"

// regexpMeta are the characters that change the meaning of the block start
// once the engine compiles it.
const regexpMeta = `\.+*?()|^$`

// alias swaps an unsafe block start for blockAlias on the way into the
// engine and back again on the way out. The zero value swaps nothing.
type alias struct {
	start string
}

func aliasFor(blockStart string) alias {
	if strings.ContainsAny(blockStart, regexpMeta) {
		return alias{start: blockStart}
	}

	return alias{}
}

// delim returns the block start handed to the engine.
func (a alias) delim(blockStart string) string {
	if a.start == "" {
		return blockStart
	}

	return blockAlias
}

func (a alias) in(s string) string {
	if a.start == "" {
		return s
	}

	return strings.ReplaceAll(s, a.start, blockAlias)
}

func (a alias) out(s string) string {
	if a.start == "" {
		return s
	}

	return strings.ReplaceAll(s, blockAlias, a.start)
}
