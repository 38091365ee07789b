package service

import (
	"context"
	"errors"
	"sync"

	"github.com/oddbyte/opm-repo/internal/config"
	"github.com/oddbyte/opm-repo/pkg/git"
	"go.uber.org/zap"
)

// ErrMirrorDisabled is returned when no mirror remote is configured.
var ErrMirrorDisabled = errors.New("mirror disabled")

// MirrorService keeps the package store checkout in sync with its remote
type MirrorService struct {
	logger *zap.Logger
	repo   *git.Repo
	mu     sync.Mutex
}

// NewMirrorService creates a MirrorService. The service is disabled when
// cfg.Mirror.URL is empty.
func NewMirrorService(cfg *config.Config, logger *zap.Logger) *MirrorService {
	s := &MirrorService{logger: logger}
	if cfg.Mirror.URL != "" {
		s.repo = git.NewRepo(cfg.Mirror.URL, cfg.Mirror.Branch, cfg.Storage.Path, cfg.Mirror.LFS, logger)
	}
	return s
}

// Enabled reports whether a remote is configured
func (s *MirrorService) Enabled() bool {
	return s.repo != nil
}

// Sync pulls the latest store contents. Concurrent calls run one at a time.
func (s *MirrorService) Sync(ctx context.Context) error {
	if !s.Enabled() {
		return ErrMirrorDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.PullOrClone(ctx); err != nil {
		return err
	}

	rev, err := s.repo.Revision()
	if err != nil {
		return err
	}
	s.logger.Info("package store synchronized",
		zap.String("url", s.repo.URL),
		zap.String("commit", rev[:7]),
	)
	return nil
}
