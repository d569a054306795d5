// Package sync periodically exports every project as JSONL to one or more
// destinations, such as an S3 bucket.
package sync

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store"
)

// Destination is a sync target.
type Destination interface {
	// Write stores data under name, replacing any previous object.
	Write(ctx context.Context, name string, data []byte) error
}

// Scheduler runs periodic syncs to one or more destinations.
type Scheduler struct {
	store        store.Store
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports from the store to the given
// destinations at the specified interval.
func NewScheduler(s store.Store, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:        s,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// Start begins periodic sync. It runs an initial sync immediately, then
// on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current sync (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	s.SyncOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SyncOnce(ctx)
		}
	}
}

// SyncOnce exports every project to every destination. Failures are logged
// and do not stop the remaining projects.
func (s *Scheduler) SyncOnce(ctx context.Context) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		s.logger.Error("sync list projects failed", "err", err)
		return
	}

	var total int
	for _, p := range projects {
		var buf bytes.Buffer
		if err := ExportJSONL(ctx, s.store, p.ID, &buf); err != nil {
			s.logger.Error("sync export failed", "project", p.ID, "err", err)
			continue
		}
		data := buf.Bytes()
		total += len(data)

		for i, dest := range s.destinations {
			if err := dest.Write(ctx, ObjectName(p.ID), data); err != nil {
				s.logger.Error("sync destination write failed",
					"destination", fmt.Sprintf("%d", i), "project", p.ID, "err", err)
			}
		}
	}

	s.logger.Info("sync completed",
		"projects", len(projects), "destinations", len(s.destinations), "bytes", total)
}
