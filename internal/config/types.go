package config

import (
	"errors"
	"fmt"

	"golang.org/x/mod/semver"
)

type ServerConfig struct {
	Host              string `mapstructure:"host"`
	Port              string `mapstructure:"port"`
	ReadHeaderTimeout int    `mapstructure:"read_header_timeout"`
	RequestTimeout    int    `mapstructure:"request_timeout"`
	ServiceVersion    string `mapstructure:"service_version"`
}

type AuthConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	AppSecretKey string `mapstructure:"app_secret_key"`
}

type ClusterConfig struct {
	Kubeconfig string `mapstructure:"kubeconfig"`
}

// BuildConfig holds everything the build services need to talk to the cluster.
// TTL values are in seconds.
type BuildConfig struct {
	BuildNamespace           string `mapstructure:"build_namespace"`
	InfraNamespace           string `mapstructure:"infra_namespace"`
	BookTemplateSelector     string `mapstructure:"book_template_selector"`
	NotebookTemplateSelector string `mapstructure:"notebook_template_selector"`
	DefaultBookPath          string `mapstructure:"default_book_path"`
	DefaultGitBranch         string `mapstructure:"default_git_branch"`
	MaxTTL                   int64  `mapstructure:"max_ttl"`
	DefaultTTL               int64  `mapstructure:"default_ttl"`
}

// StorageConfig describes the object storage backend handed to notebook workflows.
type StorageConfig struct {
	BucketName     string `mapstructure:"bucket_name"`
	BucketPrefix   string `mapstructure:"bucket_prefix"`
	Host           string `mapstructure:"host"`
	DeploymentName string `mapstructure:"deployment_name"`
}

type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Cluster ClusterConfig `mapstructure:"cluster"`
	Build   BuildConfig   `mapstructure:"build"`
	Storage StorageConfig `mapstructure:"storage"`
}

func (c *AppConfig) Validate() error {
	var errs []error

	if c.Build.BuildNamespace == "" {
		errs = append(errs, errors.New("build namespace is not configured"))
	}
	if c.Build.InfraNamespace == "" {
		errs = append(errs, errors.New("infra namespace is not configured"))
	}
	if c.Build.MaxTTL <= 0 {
		errs = append(errs, fmt.Errorf("max ttl must be positive, got %d", c.Build.MaxTTL))
	}
	if c.Build.DefaultTTL <= 0 {
		errs = append(errs, fmt.Errorf("default ttl must be positive, got %d", c.Build.DefaultTTL))
	}
	if c.Build.DefaultTTL > c.Build.MaxTTL {
		errs = append(errs, fmt.Errorf("default ttl %d exceeds max ttl %d", c.Build.DefaultTTL, c.Build.MaxTTL))
	}
	if c.Auth.Enabled && c.Auth.AppSecretKey == "" {
		errs = append(errs, errors.New("auth is enabled but app secret key is empty"))
	}
	if v := c.Server.ServiceVersion; v != "" && !semver.IsValid(canonicalVersion(v)) {
		errs = append(errs, fmt.Errorf("service version %q is not a semantic version", v))
	}

	return errors.Join(errs...)
}

// semver requires the leading "v"; accept both spellings.
func canonicalVersion(v string) string {
	if v[0] == 'v' {
		return v
	}
	return "v" + v
}
