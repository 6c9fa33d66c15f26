package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/elskow/moldavite/internal/config"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// Environment variable names used by existing deployment manifests.
var legacyEnv = map[string]string{
	"auth.app_secret_key":              "THOTH_MOLDAVITE_API_APP_SECRET_KEY",
	"build.build_namespace":            "THOTH_MOLDAVITE_BUILD_NAMESPACE",
	"build.infra_namespace":            "THOTH_MOLDAVITE_INFRA_NAMESPACE",
	"build.book_template_selector":     "THOTH_MOLDAVITE_TEMPLATE_LABEL_SELECTOR",
	"build.notebook_template_selector": "THOTH_MOLDAVITE_NOTEBOOK_TEMPLATE_LABEL_SELECTOR",
	"build.default_book_path":          "THOTH_MOLDAVITE_DEFAULT_BOOK_PATH",
	"build.default_git_branch":         "THOTH_MOLDAVITE_DEFAULT_GIT_BRANCH",
	"build.max_ttl":                    "THOTH_MOLDAVITE_MAX_TTL",
	"build.default_ttl":                "THOTH_MOLDAVITE_DEFAULT_TTL",
	"storage.bucket_name":              "THOTH_CEPH_BUCKET",
	"storage.bucket_prefix":            "THOTH_CEPH_BUCKET_PREFIX",
	"storage.host":                     "THOTH_S3_ENDPOINT_URL",
	"storage.deployment_name":          "THOTH_DEPLOYMENT_NAME",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_header_timeout", 10)
	v.SetDefault("server.request_timeout", 60)
	v.SetDefault("server.service_version", "")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.app_secret_key", "")

	v.SetDefault("cluster.kubeconfig", filepath.Join(os.Getenv("HOME"), ".kube", "config"))

	v.SetDefault("build.build_namespace", "")
	v.SetDefault("build.infra_namespace", "")
	v.SetDefault("build.book_template_selector", "template=moldavite-jupyterbook-build")
	v.SetDefault("build.notebook_template_selector", "template=moldavite-jupyterhub-notebook-build")
	v.SetDefault("build.default_book_path", "book")
	v.SetDefault("build.default_git_branch", "main")
	v.SetDefault("build.max_ttl", 3*24*60*60)
	v.SetDefault("build.default_ttl", 24*60*60)

	v.SetDefault("storage.bucket_name", "")
	v.SetDefault("storage.bucket_prefix", "")
	v.SetDefault("storage.host", "")
	v.SetDefault("storage.deployment_name", "")
}

func LoadConfig() (*config.AppConfig, error) {
	return loadConfig(viper.New())
}

func loadConfig(v *viper.Viper) (*config.AppConfig, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath("./config/server")
	v.AddConfigPath("/etc/moldavite")

	v.SetEnvPrefix("MOLDAVITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "MOLDAVITE_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("error binding env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
