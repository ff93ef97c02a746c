// Package gitrepo materializes repositories on the local filesystem with
// go-git: local directories are used in place, remote URLs are shallow-cloned.
// Fetchers serving remote callers disable local paths with WithLocalPaths.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/complyai/comply/internal/domain"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Fetcher implements domain.RepositoryFetcher.
type Fetcher struct {
	tempDir    string
	localPaths bool
}

func New() *Fetcher {
	return &Fetcher{localPaths: true}
}

// WithLocalPaths controls whether local directories and file:// URLs are
// accepted. When disabled only https and ssh references are fetched.
func (f *Fetcher) WithLocalPaths(allow bool) *Fetcher {
	f.localPaths = allow
	return f
}

// WithTempDir sets the parent directory for clones. Empty means os.TempDir.
func (f *Fetcher) WithTempDir(dir string) *Fetcher {
	f.tempDir = dir
	return f
}

func (f *Fetcher) Fetch(ctx context.Context, ref string) (*domain.Checkout, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.Errorf(domain.KindFetch, "fetching repository", "empty repository reference")
	}
	if !f.localPaths {
		if err := domain.ValidateRemoteRef(ref); err != nil {
			return nil, err
		}
		return f.clone(ctx, ref)
	}

	if info, err := os.Stat(ref); err == nil {
		if !info.IsDir() {
			return nil, domain.Errorf(domain.KindFetch, "fetching repository", "%s is not a directory", ref)
		}
		// Not every local directory is a git repository; the hash is optional.
		hash, _ := CommitHash(ref)
		return domain.NewCheckout(ref, hash, nil), nil
	}
	return f.clone(ctx, ref)
}

func (f *Fetcher) clone(ctx context.Context, ref string) (*domain.Checkout, error) {
	dir, err := os.MkdirTemp(f.tempDir, "comply-clone-*")
	if err != nil {
		return nil, domain.WrapError(domain.KindFetch, "creating clone directory", err)
	}
	cleanup := func() error { return os.RemoveAll(dir) }

	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          ref,
		Depth:        1,
		SingleBranch: true,
	})
	if err != nil {
		_ = cleanup()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, domain.WrapError(domain.KindFetch, fmt.Sprintf("cloning %s", ref), err)
	}

	var hash string
	if head, err := repo.Head(); err == nil {
		hash = head.Hash().String()
	}
	return domain.NewCheckout(dir, hash, cleanup), nil
}

// CommitHash returns the HEAD commit of the repository at path.
func CommitHash(path string) (string, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", fmt.Errorf("repository has no commits: %w", err)
		}
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Hash().String(), nil
}
