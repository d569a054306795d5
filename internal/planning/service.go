// Package planning implements the sprint analytics and task dependency
// operations on top of a store.Store. Every operation is scoped to a
// project: entities outside it are reported as NotFound.
package planning

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/analytics"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/calendar"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/events"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/idgen"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/store"
)

// defaultParallelism bounds the sprints loaded or computed at once.
const defaultParallelism = 4

// Service is the planning core shared by the HTTP and gRPC transports.
type Service struct {
	store       store.Store
	publisher   events.Publisher
	cfg         analytics.Config
	ids         idgen.Generator
	now         func() time.Time
	logger      *slog.Logger
	parallelism int

	locks     *keyedMutex
	burndowns singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the analytics configuration.
func WithConfig(cfg analytics.Config) Option {
	return func(s *Service) { s.cfg = cfg }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the nanoid generator.
func WithIDGenerator(g idgen.Generator) Option {
	return func(s *Service) { s.ids = g }
}

// WithLogger sets the logger. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithParallelism bounds concurrent sprint loads. Values below 1 are ignored.
func WithParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// New returns a Service backed by st. A nil publisher disables events.
func New(st store.Store, pub events.Publisher, opts ...Option) *Service {
	if pub == nil {
		pub = &events.NoopPublisher{}
	}
	s := &Service{
		store:       st,
		publisher:   pub,
		cfg:         analytics.DefaultConfig(),
		ids:         idgen.Nanoid{},
		now:         time.Now,
		logger:      slog.Default(),
		parallelism: defaultParallelism,
		locks:       newKeyedMutex(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Config returns the analytics configuration in use.
func (s *Service) Config() analytics.Config { return s.cfg }

// today is the current calendar day in the configured location.
func (s *Service) today() calendar.Date {
	loc := s.cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return calendar.In(s.now(), loc)
}

// projectScope loads a project, mapping absence to NotFound.
func (s *Service) projectScope(ctx context.Context, st store.Store, projectID string) (*model.Project, error) {
	if projectID == "" {
		return nil, newError(InvalidArgument, "project id is required")
	}
	p, err := st.GetProject(ctx, projectID)
	if err != nil {
		return nil, lookupError(err, "project", projectID)
	}
	return p, nil
}

// scopedSprint loads a sprint and checks that it belongs to projectID.
func (s *Service) scopedSprint(ctx context.Context, st store.Store, projectID, sprintID string) (*model.Sprint, error) {
	sp, err := st.GetSprint(ctx, sprintID)
	if err != nil {
		return nil, lookupError(err, "sprint", sprintID)
	}
	if sp.ProjectID != projectID {
		return nil, newError(NotFound, "sprint %s not found", sprintID)
	}
	return sp, nil
}

// scopedTask loads a task and checks that it belongs to projectID.
func (s *Service) scopedTask(ctx context.Context, st store.Store, projectID, taskID string) (*model.Task, error) {
	t, err := st.GetTask(ctx, taskID)
	if err != nil {
		return nil, lookupError(err, "task", taskID)
	}
	if t.ProjectID != projectID {
		return nil, newError(NotFound, "task %s not found", taskID)
	}
	return t, nil
}

// recordEvent persists an audit event through st, normally the transaction
// that made the change.
func (s *Service) recordEvent(ctx context.Context, st store.Store, topic, projectID, entityID, actor string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return st.RecordEvent(ctx, &model.Event{
		Topic:     topic,
		ProjectID: projectID,
		EntityID:  entityID,
		Actor:     actor,
		Payload:   payload,
		CreatedAt: s.now().UTC(),
	})
}

// publish emits an event after its change committed. Failures are logged
// and do not fail the request.
func (s *Service) publish(ctx context.Context, topic, entityID string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "entity_id", entityID, "error", err)
	}
}

// keyedMutex hands out one mutex per key and forgets it once no goroutine
// holds or waits for it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns the matching unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
