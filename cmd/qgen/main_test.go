package main

import (
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("QGEN_TAG", "db")
	t.Setenv("QGEN_NAMING", "property")
	t.Setenv("QGEN_PLURAL_TABLES", "false")

	var cfg config
	require.NoError(t, env.Parse(&cfg))
	assert.Equal(t, config{TagName: "db", Naming: "property", PluralTables: false, LogLevel: "info"}, cfg)

	opts, err := options(cfg)
	require.NoError(t, err)
	assert.Equal(t, "db", opts.TagName)
	assert.Equal(t, "amountMinor", opts.Naming.ColumnName("AmountMinor"))
	assert.Equal(t, "order_line", opts.Naming.TableName("OrderLine"))
}

func TestConfigDefaults(t *testing.T) {
	var cfg config
	require.NoError(t, env.Parse(&cfg))

	opts, err := options(cfg)
	require.NoError(t, err)
	assert.Equal(t, "persist", opts.TagName)
	assert.Equal(t, "amount_minor", opts.Naming.ColumnName("AmountMinor"))
	assert.Equal(t, "order_lines", opts.Naming.TableName("OrderLine"))
}

func TestOptionsRejectUnknownNaming(t *testing.T) {
	_, err := options(config{Naming: "kebab"})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug")
	assert.NoError(t, err)
	_, err = newLogger("loud")
	assert.Error(t, err)
}

func TestRunRejectsBadFlags(t *testing.T) {
	assert.Error(t, run([]string{"-no-such-flag"}))
	assert.Error(t, run([]string{"-naming", "kebab"}))
}
