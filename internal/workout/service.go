package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/petrarun/internal/clock"
	"github.com/myrjola/petrarun/internal/sqlite"
)

const (
	// completedSessionTTL is how long a finished session stays addressable after completion.
	completedSessionTTL = time.Hour
	// saveTimeout bounds a single completion write.
	saveTimeout = 10 * time.Second
)

// ServiceConfig holds the collaborators shared by every session engine.
type ServiceConfig struct {
	Clock        clock.Clock
	TickInterval time.Duration
	Prefetcher   Prefetcher
	Motivation   Motivation
}

// Service manages plans, live workout sessions, and stored completions.
type Service struct {
	repo   *repository
	logger *slog.Logger
	cfg    ServiceConfig

	mu       sync.Mutex
	sessions map[string]*Session
	// saving has a channel per completion write in flight. The channel is closed when the write ends.
	saving   map[string]chan struct{}
	closed   bool
	writes   sync.WaitGroup
}

// Session is a live workout session with its own engine.
type Session struct {
	ID     string
	PlanID int
	Engine *Engine

	completedAt time.Time
}

// NewService creates a new workout service.
func NewService(db *sqlite.Database, logger *slog.Logger, cfg ServiceConfig) *Service {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewReal()
	}
	factory := newRepositoryFactory(db, logger)
	return &Service{
		repo:     factory.newRepository(),
		logger:   logger,
		cfg:      cfg,
		mu:       sync.Mutex{},
		sessions: make(map[string]*Session),
		saving:   make(map[string]chan struct{}),
		closed:   false,
		writes:   sync.WaitGroup{},
	}
}

// ListPlans retrieves all plans.
func (s *Service) ListPlans(ctx context.Context) ([]Plan, error) {
	plans, err := s.repo.plans.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// GetPlan retrieves a plan by id.
func (s *Service) GetPlan(ctx context.Context, id int) (Plan, error) {
	plan, err := s.repo.plans.Get(ctx, id)
	if err != nil {
		return Plan{}, fmt.Errorf("get plan %d: %w", id, err)
	}
	return plan, nil
}

// CreatePlan validates and stores a new plan.
func (s *Service) CreatePlan(ctx context.Context, plan Plan) (Plan, error) {
	if err := plan.Validate(); err != nil {
		return Plan{}, err
	}
	created, err := s.repo.plans.Create(ctx, plan)
	if err != nil {
		return Plan{}, fmt.Errorf("create plan: %w", err)
	}
	return created, nil
}

// StartSession creates a session for a stored plan. The engine is initialized but not started.
func (s *Service) StartSession(ctx context.Context, planID int) (*Session, error) {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return s.StartSessionWithPlan(ctx, plan)
}

// StartSessionWithPlan creates a session for plan, which need not be stored. A PlanID of 0 is kept as a
// completion without plan reference.
func (s *Service) StartSessionWithPlan(ctx context.Context, plan Plan) (*Session, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	logger := s.logger.With(slog.String("session_id", id))
	sess := &Session{
		ID:          id,
		PlanID:      plan.ID,
		Engine:      nil,
		completedAt: time.Time{},
	}
	sess.Engine = NewEngine(EngineConfig{
		Clock:        s.cfg.Clock,
		Logger:       logger,
		TickInterval: s.cfg.TickInterval,
		Prefetcher:   s.cfg.Prefetcher,
		Sink: SinkFunc(func(data CompletionData) {
			s.saveCompletionAsync(logger, sess, Completion{
				ID:             id,
				PlanID:         plan.ID,
				PlanName:       plan.Name,
				CompletionData: data,
			})
		}),
		Motivation: s.cfg.Motivation,
	})
	if err := sess.Engine.Initialize(plan); err != nil {
		return nil, fmt.Errorf("initialize engine: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		sess.Engine.Close()
		return nil, errors.New("service closed")
	}
	s.evictCompletedLocked()
	s.sessions[id] = sess
	logger.LogAttrs(ctx, slog.LevelInfo, "session created",
		slog.Int("plan_id", plan.ID), slog.Int("exercises", len(plan.Exercises)))
	return sess, nil
}

// Session retrieves a live session.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// EndSession abandons a session and forgets it. A completed session's record is unaffected.
func (s *Service) EndSession(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	sess.Engine.Close()
	s.logger.LogAttrs(ctx, slog.LevelInfo, "session ended", slog.String("session_id", id))
	return nil
}

// evictCompletedLocked forgets sessions that completed more than completedSessionTTL ago.
func (s *Service) evictCompletedLocked() {
	now := s.cfg.Clock.Now()
	for id, sess := range s.sessions {
		if sess.completedAt.IsZero() {
			continue
		}
		if now.Sub(sess.completedAt) > completedSessionTTL {
			sess.Engine.Close()
			delete(s.sessions, id)
		}
	}
}

// saveCompletionAsync marks sess completed and persists c in the background. Once the service is closed the
// write happens on the calling goroutine. Failures are logged and not retried.
func (s *Service) saveCompletionAsync(logger *slog.Logger, sess *Session, c Completion) {
	done := make(chan struct{})
	save := func() {
		defer func() {
			s.mu.Lock()
			delete(s.saving, c.ID)
			s.mu.Unlock()
			close(done)
		}()
		s.saveCompletion(logger, c)
	}

	s.mu.Lock()
	sess.completedAt = s.cfg.Clock.Now()
	s.saving[c.ID] = done
	if s.closed {
		s.mu.Unlock()
		save()
		return
	}
	// Close sets closed under the same lock before it waits on writes.
	s.writes.Go(save)
	s.mu.Unlock()
}

func (s *Service) saveCompletion(logger *slog.Logger, c Completion) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.repo.completions.Create(ctx, c); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failed to save completion",
			slog.String("completion_id", c.ID), slog.Any("error", err))
		return
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "saved completion",
		slog.String("completion_id", c.ID),
		slog.Bool("fully_completed", c.IsFullyCompleted),
		slog.Int("exercises", len(c.CompletedExercises)),
		slog.Int("calories", c.TotalCaloriesBurned))
}

// waitSaved blocks until the write of completion id, if one is in flight, has ended.
func (s *Service) waitSaved(ctx context.Context, id string) error {
	s.mu.Lock()
	done, ok := s.saving[id]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for completion write: %w", ctx.Err())
	}
}

// ListCompletions retrieves the most recent completions.
func (s *Service) ListCompletions(ctx context.Context, limit int) ([]Completion, error) {
	completions, err := s.repo.completions.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return completions, nil
}

// GetCompletion retrieves a stored completion. A session that completed but whose record is still being
// written is served from its engine.
func (s *Service) GetCompletion(ctx context.Context, id string) (Completion, error) {
	c, err := s.repo.completions.Get(ctx, id)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Completion{}, fmt.Errorf("get completion %s: %w", id, err)
	}
	sess, sessErr := s.Session(id)
	if sessErr != nil {
		return Completion{}, fmt.Errorf("get completion %s: %w", id, err)
	}
	data, ok := sess.Engine.Completion()
	if !ok {
		return Completion{}, fmt.Errorf("get completion %s: %w", id, ErrNotFound)
	}
	plan := sess.Engine.Plan()
	return Completion{ID: id, PlanID: plan.ID, PlanName: plan.Name, CompletionData: data}, nil
}

// RateCompletion stores the user's 1-5 rating of a completed workout.
func (s *Service) RateCompletion(ctx context.Context, id string, rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: %d is not between %d and %d", ErrInvalidRating, rating, MinRating, MaxRating)
	}
	if err := s.waitSaved(ctx, id); err != nil {
		return fmt.Errorf("rate completion %s: %w", id, err)
	}
	if err := s.repo.completions.SetRating(ctx, id, rating); err != nil {
		return fmt.Errorf("rate completion %s: %w", id, err)
	}
	return nil
}

// Flush waits for the completion writes in flight when it is called.
func (s *Service) Flush() {
	s.mu.Lock()
	pending := make([]chan struct{}, 0, len(s.saving))
	for _, done := range s.saving {
		pending = append(pending, done)
	}
	s.mu.Unlock()

	for _, done := range pending {
		<-done
	}
}

// Close abandons every live session and waits for pending completion writes.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Engine.Close()
	}
	s.writes.Wait()
}
