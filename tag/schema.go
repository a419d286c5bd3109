package tag

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Configuration schemas of the built-in tags.
const (
	JSONSchema = `{
	"type": "object",
	"properties": {
		"flatten": {"type": "boolean"}
	}
}`

	ConsulSchema = `{
	"type": "object",
	"properties": {
		"url":     {"type": "string", "format": "uri"},
		"scheme":  {"type": "string", "enum": ["http", "https"]},
		"host":    {"type": "string", "format": "hostname"},
		"port":    {"type": "number", "minimum": 0, "maximum": 65535},
		"token":   {"type": "string", "minLength": 5},
		"flatten": {"type": "boolean"}
	},
	"additionalProperties": false
}`

	VaultSchema = `{
	"type": "object",
	"properties": {
		"url":     {"type": "string", "format": "uri"},
		"scheme":  {"type": "string", "enum": ["http", "https"]},
		"host":    {"type": "string", "format": "hostname"},
		"port":    {"type": "number", "minimum": 0, "maximum": 65535},
		"token":   {"type": "string", "minLength": 5},
		"backend": {"type": "string", "enum": ["raw", "kv1", "kv2"]},
		"flatten": {"type": "boolean"}
	},
	"additionalProperties": false
}`

	DNSSchema = `{
	"type": "object",
	"properties": {
		"nameservers": {
			"type": "array",
			"items": {
				"type": "string",
				"oneOf": [{"format": "ipv4"}, {"format": "ipv6"}]
			}
		},
		"port":    {"type": "number", "minimum": 0, "maximum": 65535},
		"type":    {"type": "string", "enum": ["A", "AAAA", "MX", "SRV"]},
		"flatten": {"type": "boolean"}
	},
	"additionalProperties": false
}`
)

// CompileSchema compiles a draft 4 JSON Schema with format assertions
// enabled.
func CompileSchema(name, src string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft4
	c.AssertFormat = true

	url := "mem:///" + name + ".json"

	if err := c.AddResource(url, strings.NewReader(src)); err != nil {
		return nil, err
	}

	return c.Compile(url)
}

// Validate checks v against s. The value is first converted to its JSON
// form so that Go maps, slices and numbers of any type are accepted.
func Validate(s *jsonschema.Schema, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}

	return s.Validate(doc)
}
