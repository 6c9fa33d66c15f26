package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setNamespaces(t *testing.T) {
	t.Setenv("MOLDAVITE_BUILD_BUILD_NAMESPACE", "moldavite-builds")
	t.Setenv("MOLDAVITE_BUILD_INFRA_NAMESPACE", "moldavite-infra")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setNamespaces(t)

	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 60, cfg.Server.RequestTimeout)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "moldavite-builds", cfg.Build.BuildNamespace)
	assert.Equal(t, "moldavite-infra", cfg.Build.InfraNamespace)
	assert.Equal(t, "template=moldavite-jupyterbook-build", cfg.Build.BookTemplateSelector)
	assert.Equal(t, "template=moldavite-jupyterhub-notebook-build", cfg.Build.NotebookTemplateSelector)
	assert.Equal(t, "book", cfg.Build.DefaultBookPath)
	assert.Equal(t, "main", cfg.Build.DefaultGitBranch)
	assert.Equal(t, int64(259200), cfg.Build.MaxTTL)
	assert.Equal(t, int64(86400), cfg.Build.DefaultTTL)
}

func TestLoadConfig_LegacyEnv(t *testing.T) {
	t.Setenv("THOTH_MOLDAVITE_BUILD_NAMESPACE", "thoth-builds")
	t.Setenv("THOTH_MOLDAVITE_INFRA_NAMESPACE", "thoth-infra")
	t.Setenv("THOTH_MOLDAVITE_MAX_TTL", "7200")
	t.Setenv("THOTH_MOLDAVITE_DEFAULT_TTL", "3600")
	t.Setenv("THOTH_CEPH_BUCKET", "thoth")
	t.Setenv("THOTH_S3_ENDPOINT_URL", "https://s3.example.com")

	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "thoth-builds", cfg.Build.BuildNamespace)
	assert.Equal(t, "thoth-infra", cfg.Build.InfraNamespace)
	assert.Equal(t, int64(7200), cfg.Build.MaxTTL)
	assert.Equal(t, int64(3600), cfg.Build.DefaultTTL)
	assert.Equal(t, "thoth", cfg.Storage.BucketName)
	assert.Equal(t, "https://s3.example.com", cfg.Storage.Host)
}

func TestLoadConfig_PrefixedEnvWins(t *testing.T) {
	setNamespaces(t)
	t.Setenv("THOTH_MOLDAVITE_DEFAULT_GIT_BRANCH", "master")
	t.Setenv("MOLDAVITE_BUILD_DEFAULT_GIT_BRANCH", "trunk")

	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "trunk", cfg.Build.DefaultGitBranch)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config", "server"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "server", "config.toml"), []byte(`
[server]
port = "9090"
service_version = "1.4.0"

[build]
build_namespace = "file-builds"
infra_namespace = "file-infra"
max_ttl = 600
default_ttl = 300
`), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "1.4.0", cfg.Server.ServiceVersion)
	assert.Equal(t, "file-builds", cfg.Build.BuildNamespace)
	assert.Equal(t, int64(600), cfg.Build.MaxTTL)
	assert.Equal(t, int64(300), cfg.Build.DefaultTTL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing namespaces",
			env:     map[string]string{},
			wantErr: "build namespace is not configured",
		},
		{
			name: "default ttl above max",
			env: map[string]string{
				"MOLDAVITE_BUILD_BUILD_NAMESPACE": "b",
				"MOLDAVITE_BUILD_INFRA_NAMESPACE": "i",
				"MOLDAVITE_BUILD_MAX_TTL":         "100",
				"MOLDAVITE_BUILD_DEFAULT_TTL":     "200",
			},
			wantErr: "default ttl 200 exceeds max ttl 100",
		},
		{
			name: "auth without secret",
			env: map[string]string{
				"MOLDAVITE_BUILD_BUILD_NAMESPACE": "b",
				"MOLDAVITE_BUILD_INFRA_NAMESPACE": "i",
				"MOLDAVITE_AUTH_ENABLED":          "true",
			},
			wantErr: "app secret key is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := loadConfig(viper.New())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
