package api

// Build endpoints
const (
	BooksPath     = "/books"
	BookPath      = "/books/{book_id}"
	NotebooksPath = "/notebooks"
	NotebookPath  = "/notebooks/{notebook_id}"
)

// Operational endpoints
const (
	VersionPath = "/version"
	HealthPath  = "/healthz"
	ReadyPath   = "/readyz"
	MetricsPath = "/metrics"
)

// PublicEndpoints defines endpoints that don't require authentication
var PublicEndpoints = map[string]bool{
	VersionPath: true,
	HealthPath:  true,
	ReadyPath:   true,
	MetricsPath: true,
}
