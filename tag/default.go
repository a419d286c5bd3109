package tag

import "sync"

// Builtin returns the built-in tag kinds in classification order.
func Builtin() []Kind {
	return []Kind{
		{Name: "json", Parse: ParseJSON, Schema: JSONSchema, Nestable: true},
		{Name: "jsonfile", Parse: ParseJSONFile, Schema: JSONSchema, Nestable: true},
		{Name: "base64", Parse: ParseBase64},
		{Name: "consul", Parse: ParseConsul, Schema: ConsulSchema},
		{Name: "list", Parse: ParseList, Nestable: true},
		{Name: "file", Parse: ParseFile},
		{Name: "vault", Parse: ParseVault, Schema: VaultSchema},
		{Name: "dns", Parse: ParseDNS, Schema: DNSSchema},
		{Name: "escape", Parse: ParseEscape},
		{Name: "expr", Parse: ParseExpr},
	}
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(Builtin()...)
	if err != nil {
		panic(err)
	}

	return r
})

// Default returns the shared registry of built-in tags. Callers must not
// register additional kinds on it; build a registry with [NewRegistry]
// instead.
func Default() *Registry { return defaultRegistry() }
