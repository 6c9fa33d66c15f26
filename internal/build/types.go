package build

import (
	"github.com/elskow/moldavite/internal/cluster"
)

type Kind string

const (
	KindBook     Kind = "book"
	KindNotebook Kind = "notebook"
)

type BookRequest struct {
	RepoURL   string  `json:"repo_url"`
	BookPath  *string `json:"book_path,omitempty"`
	GitBranch *string `json:"git_branch,omitempty"`
	TTL       *int64  `json:"ttl,omitempty"`
}

type BookBuild struct {
	BookID    string `json:"book_id"`
	RepoURL   string `json:"repo_url"`
	GitBranch string `json:"git_branch"`
	BookPath  string `json:"book_path"`
	TTL       int64  `json:"-"`
}

// BookStatus is the merged view of a book's workflow, route and deployment config.
// Pieces that could not be found are reported as null.
type BookStatus struct {
	Host        *string                       `json:"host"`
	TTL         *int64                        `json:"ttl"`
	BookID      string                        `json:"book_id"`
	BookPath    *string                       `json:"book_path"`
	GitBranch   *string                       `json:"git_branch"`
	RepoURL     *string                       `json:"repo_url"`
	BuildStatus *cluster.WorkflowStatusReport `json:"build_status"`
}

type NotebookRequest struct {
	RepoURL   string  `json:"repo_url"`
	GitBranch *string `json:"git_branch,omitempty"`
}

type NotebookBuild struct {
	NotebookID string `json:"notebook_id"`
	RepoURL    string `json:"repo_url"`
	GitBranch  string `json:"git_branch"`
}

type NotebookStatus struct {
	NotebookID  string                        `json:"notebook_id"`
	BuildStatus *cluster.WorkflowStatusReport `json:"build_status"`
}

// Deployment config annotations written by the book workflow.
const (
	annotationRepoBranch = "moldavite.repo_branch"
	annotationBookPath   = "moldavite.book_path"
	annotationRepoURL    = "moldavite.repo_url"
	labelTTL             = "ttl"
)

// Template parameters understood by the workflow templates.
const (
	paramRepoURL    = "MOLDAVITE_REPO_URL"
	paramBookID     = "MOLDAVITE_BOOK_ID"
	paramNotebookID = "MOLDAVITE_NOTEBOOK_ID"
	paramRepoBranch = "MOLDAVITE_REPO_BRANCH"
	paramBookPath   = "MOLDAVITE_BOOK_PATH"
	paramTTL        = "MOLDAVITE_TTL"
)
