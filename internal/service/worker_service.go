package service

import (
	"context"
	"time"

	"document-memory-backend/internal/config"
	"document-memory-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// SweeperService periodically deactivates expired credentials. Expiry
// is already enforced at validation time; the sweep keeps listings and
// the database honest for tokens that are never presented again.
type SweeperService struct {
	catRepo  *repository.CATRepository
	patRepo  *repository.PATRepository
	interval time.Duration
}

func NewSweeperService(
	catRepo *repository.CATRepository,
	patRepo *repository.PATRepository,
	workerCfg config.WorkerConfig,
) *SweeperService {
	return &SweeperService{
		catRepo:  catRepo,
		patRepo:  patRepo,
		interval: workerCfg.SweepInterval,
	}
}

// Run sweeps on the configured interval until the context is cancelled
func (s *SweeperService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.SweepOnce()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce deactivates every expired CAT and PAT
func (s *SweeperService) SweepOnce() {
	now := time.Now().UTC()

	cats, err := s.catRepo.DeactivateExpiredCATs(now)
	if err != nil {
		logrus.WithError(err).Error("Failed to sweep expired collection tokens")
	}
	pats, err := s.patRepo.DeactivateExpiredPATs(now)
	if err != nil {
		logrus.WithError(err).Error("Failed to sweep expired personal tokens")
	}

	if cats > 0 || pats > 0 {
		logrus.WithFields(logrus.Fields{
			"cats": cats,
			"pats": pats,
		}).Info("Deactivated expired tokens")
	}
}
