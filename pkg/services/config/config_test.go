package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.MaxDataRows)
	assert.Equal(t, 20, cfg.MaxBarCategories)
	assert.Equal(t, 10, cfg.MaxPieCategories)
	assert.Equal(t, 7, cfg.LogRetentionDays)
	assert.Equal(t, 86400, cfg.TempFileTTLSeconds)
	assert.Equal(t, 600, cfg.ChartWidth)
	assert.Equal(t, 300, cfg.ChartHeight)
	assert.False(t, cfg.ChartsDisabled)
	assert.Equal(t, "amount", cfg.AmountField)
	assert.Equal(t, "product", cfg.EntityField)
}

func TestLoad_YAMLFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	content := `allowed_output_dir: /var/reports
max_data_rows: 25
charts_disabled: true
entity_field: sku
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/reports", cfg.AllowedOutputDir)
	assert.Equal(t, 25, cfg.MaxDataRows)
	assert.True(t, cfg.ChartsDisabled)
	assert.Equal(t, "sku", cfg.EntityField)
	// untouched keys keep their defaults
	assert.Equal(t, 10, cfg.MaxPieCategories)
	assert.Equal(t, "amount", cfg.AmountField)
}

func TestLoad_RejectsNegativeSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_data_rows: -1\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "non-negative")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestProfileRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.ini")
	content := `[staging]
allowed_output_dir = /srv/staging/reports
log_dir = /srv/staging/logs

[production]
allowed_output_dir = /srv/prod/reports
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg, err := NewProfileRegistry(path)
	require.NoError(t, err)

	names, err := reg.GetProfiles(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"staging", "production"}, names)

	p, err := reg.GetProfile(context.Background(), "staging")
	require.NoError(t, err)
	assert.Equal(t, "/srv/staging/reports", p.AllowedOutputDir)
	assert.Equal(t, "/srv/staging/logs", p.LogDir)

	p, err = reg.GetProfile(context.Background(), "production")
	require.NoError(t, err)
	assert.Empty(t, p.LogDir)

	_, err = reg.GetProfile(context.Background(), "missing")
	assert.ErrorContains(t, err, "profile missing not found")
}

func TestProfileRegistry_MissingFile(t *testing.T) {
	_, err := NewProfileRegistry(filepath.Join(t.TempDir(), "nope.ini"))
	assert.Error(t, err)
}
