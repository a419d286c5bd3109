package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/j2env/tag"
)

func TestTagRows(t *testing.T) {
	rows := make(map[string][]string)
	for _, row := range tagRows(tag.Default()) {
		rows[row[0]] = row
	}

	assert.Equal(t, []string{"consul:", "yes", "no", "CONSUL_CONFIG", "CONSUL_TOKEN"}, rows["consul:"])
	assert.Equal(t, []string{"vault:", "yes", "no", "VAULT_CONFIG", "VAULT_TOKEN"}, rows["vault:"])
	assert.Equal(t, []string{"dns:", "yes", "no", "DNS_CONFIG", "-"}, rows["dns:"])
	assert.Equal(t, []string{"base64:", "no", "no", "-", "-"}, rows["base64:"])
	assert.Equal(t, "yes", rows["json:"][2])
}

func TestTags_Run(t *testing.T) {
	var stdout bytes.Buffer

	require.NoError(t, (&Tags{}).Run(WithOutput(t.Context(), &stdout, &bytes.Buffer{})))

	out := stdout.String()
	assert.Contains(t, out, "TOKEN VARIABLE")
	assert.Contains(t, out, "consul:")
	assert.Contains(t, out, "jsonfile:")
}
