package domain

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/complyai/comply/internal/domain/textnorm"
)

// RuleLoader reads a rule source into a validated RuleSet.
type RuleLoader interface {
	Load(source string) (*RuleSet, error)
}

// RepositoryFetcher materializes repository contents at a local path, or
// fails with a fetch error.
type RepositoryFetcher interface {
	Fetch(ctx context.Context, ref string) (*Checkout, error)
}

// RepositoryInspector harvests code markers from a local checkout.
type RepositoryInspector interface {
	Inspect(ctx context.Context, root string) (*RepoEvidence, error)
}

// DocumentExtractor turns an uploaded policy document into plain text.
type DocumentExtractor interface {
	Extract(filename string, data []byte) (string, error)
}

// AnalysisInput is owned by the request that created it.
type AnalysisInput struct {
	DocumentText string
	Filename     string
	// RepoRef is a clone URL or a local directory. Empty means no repository.
	RepoRef string
}

// scpLikeRef matches the ssh shorthand git accepts, e.g. git@host:org/repo.git.
var scpLikeRef = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:[^\\]+$`)

// ValidateRemoteRef accepts only https and ssh repository references. Local
// paths, file:// and other schemes fail with an input error, so remote
// callers cannot point the inspector at the host's filesystem.
func ValidateRemoteRef(ref string) error {
	const op = "validating repository"
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Errorf(KindInput, op, "empty repository reference")
	}
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return Errorf(KindInput, op, "malformed repository URL: %v", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "https", "ssh":
			if u.Host == "" {
				return Errorf(KindInput, op, "repository URL %q has no host", ref)
			}
			return nil
		default:
			return Errorf(KindInput, op, "unsupported repository scheme %q (use https or ssh)", u.Scheme)
		}
	}
	if scpLikeRef.MatchString(ref) {
		return nil
	}
	return Errorf(KindInput, op, "repository must be an https or ssh URL")
}

// Checkout is a repository materialized on the local filesystem.
type Checkout struct {
	Path       string
	CommitHash string
	cleanup    func() error
}

// NewCheckout wraps path. cleanup runs once on Release and may be nil.
func NewCheckout(path, commitHash string, cleanup func() error) *Checkout {
	return &Checkout{Path: path, CommitHash: commitHash, cleanup: cleanup}
}

// Release removes any temporary files backing the checkout.
func (c *Checkout) Release() error {
	if c == nil || c.cleanup == nil {
		return nil
	}
	fn := c.cleanup
	c.cleanup = nil
	return fn()
}

// RepoEvidence holds the tokenized source files of an inspected repository.
type RepoEvidence struct {
	Root         string       `json:"root"`
	Files        []SourceFile `json:"files"`
	FilesSkipped int          `json:"files_skipped"`
}

// SourceFile is one inspected file with its identifier tokens.
type SourceFile struct {
	Path   string          `json:"path"`
	Tokens textnorm.Tokens `json:"-"`
}
