package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

// Repo represents a Git checkout of a package store
type Repo struct {
	URL    string
	Branch string
	Path   string
	LFS    bool
	Logger *zap.Logger
}

// NewRepo creates a new Repo instance checked out at path
func NewRepo(url, branch, path string, lfs bool, logger *zap.Logger) *Repo {
	return &Repo{
		URL:    url,
		Branch: branch,
		Path:   path,
		LFS:    lfs,
		Logger: logger,
	}
}

// PullOrClone brings the checkout up to date with the remote
func (r *Repo) PullOrClone(ctx context.Context) error {
	repo, err := r.openOrClone(ctx)
	if err != nil {
		return fmt.Errorf("failed to open/clone repo: %w", err)
	}

	// Get the worktree
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	// Pull the latest changes
	err = worktree.PullContext(ctx, &git.PullOptions{
		ReferenceName: r.referenceName(),
		Force:         true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull: %w", err)
	}

	// Archives tracked with LFS are only pointers until 'git lfs pull'
	if r.LFS {
		r.pullLFS(ctx)
	}

	return nil
}

// Revision returns the commit hash the checkout is at
func (r *Repo) Revision() (string, error) {
	repo, err := git.PlainOpen(r.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open repo: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	return ref.Hash().String(), nil
}

func (r *Repo) referenceName() plumbing.ReferenceName {
	if r.Branch == "" {
		return ""
	}
	return plumbing.NewBranchReferenceName(r.Branch)
}

func (r *Repo) pullLFS(ctx context.Context) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		r.Logger.Warn("git not found for LFS pull", zap.Error(err))
		return
	}
	cmd := exec.CommandContext(ctx, gitPath, "lfs", "pull")
	cmd.Dir = r.Path
	output, err := cmd.CombinedOutput()
	if err != nil {
		r.Logger.Warn("git lfs pull failed", zap.Error(err), zap.ByteString("output", output))
		return
	}
	r.Logger.Info("git lfs pull succeeded", zap.ByteString("output", output))
}

// openOrClone opens an existing repository or clones it if it doesn't exist
func (r *Repo) openOrClone(ctx context.Context) (*git.Repository, error) {
	// Try to open existing repository
	repo, err := git.PlainOpen(r.Path)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, err
	}

	r.Logger.Info("cloning package store",
		zap.String("url", r.URL),
		zap.String("path", r.Path),
	)

	// Create directory if it doesn't exist
	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	repo, err = git.PlainCloneContext(ctx, r.Path, false, &git.CloneOptions{
		URL:           r.URL,
		ReferenceName: r.referenceName(),
		SingleBranch:  r.Branch != "",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone: %w", err)
	}

	return repo, nil
}
