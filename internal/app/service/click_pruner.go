package service

import (
	"context"
	"time"

	apprepository "github.com/stubhq/stublink/internal/app/repository"
	"go.uber.org/zap"
)

// ClickPruner periodically deletes archived click rows older than the
// configured retention window.
type ClickPruner struct {
	logger    *zap.Logger
	repo      apprepository.ClickArchiveRepository
	retention time.Duration
	interval  time.Duration
	stopChan  chan struct{}
}

// NewClickPruner creates a pruner for the given retention window.
func NewClickPruner(logger *zap.Logger, repo apprepository.ClickArchiveRepository, retention time.Duration) *ClickPruner {
	return &ClickPruner{
		logger:    logger,
		repo:      repo,
		retention: retention,
		interval:  time.Hour,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the periodic pruning.
func (p *ClickPruner) Start() {
	go p.run()
}

// Stop stops the periodic pruning.
func (p *ClickPruner) Stop() {
	close(p.stopChan)
}

func (p *ClickPruner) run() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.prune()
		case <-p.stopChan:
			p.logger.Info("click pruner stopped")
			return
		}
	}
}

func (p *ClickPruner) prune() {
	ctx := context.Background()
	cutoff := time.Now().Add(-p.retention)

	affected, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("failed to prune click archive", zap.Error(err))
		return
	}

	if affected > 0 {
		p.logger.Info("pruned expired click archive rows",
			zap.Int64("count", affected),
			zap.Time("cutoff", cutoff),
		)
	}
}
