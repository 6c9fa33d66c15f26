package version

// Version is overridden at build time with
// -ldflags "-X github.com/elskow/moldavite/internal/version.Version=...".
var Version = "0.1.0"

type Info struct {
	Version        string `json:"version"`
	ServiceVersion string `json:"service_version"`
}

func Get(serviceVersion string) Info {
	return Info{
		Version:        Version,
		ServiceVersion: serviceVersion,
	}
}
