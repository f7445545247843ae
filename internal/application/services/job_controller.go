package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	apperrors "github.com/jessica-dev/jessica/internal/application/errors"
	"github.com/jessica-dev/jessica/internal/application/ports"
	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/execution"
	"github.com/jessica-dev/jessica/internal/domain/repositories"
	domainservices "github.com/jessica-dev/jessica/internal/domain/services"
	"github.com/jessica-dev/jessica/internal/domain/values"
)

// Defaults for ControllerOptions.
const (
	DefaultGracePeriod = 5 * time.Second
	DefaultEventBuffer = 256
	defaultRecentLimit = 32
)

// ControllerOptions configure a JobController.
type ControllerOptions struct {
	Logger      *slog.Logger
	GracePeriod time.Duration
	EventBuffer int
}

// jobSlot is the controller's view of one job, active or recently finished.
type jobSlot struct {
	job     *ComposeJob
	summary *execution.JobSummary
	done    chan struct{}
	profile string
}

type subscription struct {
	observer ports.Observer
	id       int
}

// JobController runs at most one compose job at a time, applies the
// fail-fast policy to classified messages and publishes lifecycle events.
//
// The controller owns a single job slot. Start claims it, and it is
// released back to Idle only after the JobFinished event was delivered.
type JobController struct {
	resolver    *LaunchResolver
	runner      ports.ProcessRunner
	classifier  *domainservices.MessageClassifier
	history     repositories.JobHistoryRepository
	logger      *slog.Logger
	active      *jobSlot
	recent      map[values.JobID]*jobSlot
	idle        chan struct{}
	subscribers []subscription
	grace       time.Duration
	buffer      int
	seq         values.JobSequence
	nextSubID   int
	mu          sync.Mutex
	state       values.JobState
}

// NewJobController creates an idle controller.
func NewJobController(
	resolver *LaunchResolver,
	runner ports.ProcessRunner,
	classifier *domainservices.MessageClassifier,
	history repositories.JobHistoryRepository,
	opts ControllerOptions,
) *JobController {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = DefaultEventBuffer
	}
	idle := make(chan struct{})
	close(idle)
	return &JobController{
		resolver:   resolver,
		runner:     runner,
		classifier: classifier,
		history:    history,
		logger:     opts.Logger,
		grace:      opts.GracePeriod,
		buffer:     opts.EventBuffer,
		recent:     make(map[values.JobID]*jobSlot),
		idle:       idle,
		state:      values.StateIdle,
	}
}

// Start resolves a snapshot of profile and claims the job slot. The
// process is spawned in the background; Start returns the new job's id
// without waiting for it. A second Start while a job is active fails
// with *apperrors.BusyError.
func (c *JobController) Start(ctx context.Context, profile *entities.Profile) (values.JobID, error) {
	snapshot := profile.Clone()

	c.mu.Lock()
	busy := c.busyLocked()
	c.mu.Unlock()
	if busy != nil {
		return 0, busy
	}

	config, err := c.resolver.Resolve(ctx, snapshot)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	if busy := c.busyLocked(); busy != nil {
		c.mu.Unlock()
		return 0, busy
	}

	id := c.seq.Next()
	job := NewComposeJob(id, config, c.runner, c.classifier, ComposeJobOptions{
		Logger:      c.logger,
		GracePeriod: c.grace,
		Buffer:      c.buffer,
	})
	slot := &jobSlot{job: job, profile: snapshot.Name, done: make(chan struct{})}
	c.active = slot
	c.recent[id] = slot
	c.pruneRecentLocked()
	c.idle = make(chan struct{})
	c.transitionLocked(values.StateStarting)
	c.mu.Unlock()

	c.logger.Info("compose job starting", "job_id", id.String(), "profile", snapshot.Name)

	go c.supervise(context.WithoutCancel(ctx), slot)
	return id, nil
}

// supervise drives one job from spawn to release of the slot. It is the
// only consumer of the job's output channel and the only goroutine that
// delivers events for the job, so observers see them in order.
func (c *JobController) supervise(ctx context.Context, slot *jobSlot) {
	job := slot.job
	id := job.ID()
	config := job.Config()

	c.publish(ports.Event{Type: ports.EventJobStarted, JobID: id, Profile: slot.profile})

	if err := job.Start(ctx); err != nil {
		c.logger.Error("compose process failed to start", "job_id", id.String(), "error", err)
	} else if !job.AbortRequested() {
		c.mu.Lock()
		c.transitionLocked(values.StateRunning)
		c.mu.Unlock()
	}

	failFast := false
	for out := range job.Output() {
		if out.AbortTimeout != nil {
			c.publish(ports.Event{Type: ports.EventAbortTimedOut, JobID: id, Profile: slot.profile, Err: out.AbortTimeout, Counts: out.Counts})
			continue
		}

		msg := out.Message
		c.logger.Debug("classified", "job_id", id.String(), "seq", msg.Seq, "severity", msg.Severity.String(), "kind", msg.Kind.String())

		if !failFast && msg.Counted() && msg.Severity.IsHigherOrEqual(config.FailFastThreshold()) {
			failFast = true
			c.logger.Info("fail-fast triggered", "job_id", id.String(), "seq", msg.Seq, "severity", msg.Severity.String())
			job.Abort(values.AbortFailFast)
		}

		c.publish(ports.Event{Type: ports.EventMessageClassified, JobID: id, Profile: slot.profile, Message: msg, Counts: out.Counts})
	}
	<-job.Done()

	summary, record := c.summarize(slot, failFast)
	if c.history != nil {
		if err := c.history.Save(ctx, record); err != nil {
			c.logger.Warn("failed to save job record", "job_id", id.String(), "error", err)
		}
	}

	c.mu.Lock()
	slot.summary = &summary
	c.transitionLocked(summary.Outcome)
	c.mu.Unlock()

	c.logger.Info("compose job finished",
		"job_id", id.String(),
		"outcome", summary.Outcome.String(),
		"exit_code", summary.ExitCode,
		"counts", summary.Counts.String())

	c.publish(ports.Event{
		Type:    ports.EventJobFinished,
		JobID:   id,
		Profile: slot.profile,
		Outcome: summary.Outcome,
		Counts:  summary.Counts,
		Summary: &summary,
	})

	c.mu.Lock()
	c.transitionLocked(values.StateIdle)
	c.active = nil
	close(slot.done)
	close(c.idle)
	c.mu.Unlock()
}

func (c *JobController) summarize(slot *jobSlot, failFast bool) (execution.JobSummary, *execution.JobRecord) {
	job := slot.job
	res := job.Result()

	reason := res.AbortReason
	if reason == values.AbortNone && failFast {
		// the process was already gone when the threshold was crossed
		reason = values.AbortFailFast
	}

	summary := execution.JobSummary{
		JobID:         job.ID(),
		RunID:         values.NewRunID(),
		Profile:       slot.profile,
		Argv:          job.Config().Argv(),
		StartedAt:     res.StartedAt,
		ExitCode:      res.ExitCode,
		AbortReason:   reason,
		AbortTimedOut: res.AbortTimedOut,
	}
	if res.SpawnErr != nil {
		summary.SpawnError = res.SpawnErr.Error()
	}

	messages := job.Messages()
	record := execution.NewJobRecord(summary, messages)
	record.Finalize(res.EndedAt)

	record.Summary.Outcome = domainservices.EvaluateOutcome(domainservices.OutcomeInput{
		AbortReason: reason,
		Counts:      record.Summary.Counts,
		ExitCode:    res.ExitCode,
		SpawnFailed: res.SpawnErr != nil,
	})
	record.Summary.Suggestions = domainservices.BuildSuggestions(messages)

	return record.Summary, record
}

// busyLocked returns a *apperrors.BusyError while the slot is taken.
func (c *JobController) busyLocked() error {
	if c.state == values.StateIdle {
		return nil
	}
	return apperrors.NewBusyError(c.active.job.ID().String(), c.state.String())
}

// transitionLocked moves the controller to next. Illegal transitions are
// programming errors and are logged, not applied.
func (c *JobController) transitionLocked(next values.JobState) {
	if !c.state.CanTransitionTo(next) {
		c.logger.Error("illegal job state transition", "from", c.state.String(), "to", next.String())
		return
	}
	c.logger.Debug("job state", "from", c.state.String(), "to", next.String())
	c.state = next
}

func (c *JobController) pruneRecentLocked() {
	if len(c.recent) <= defaultRecentLimit {
		return
	}
	ids := make([]values.JobID, 0, len(c.recent))
	for id := range c.recent {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids[:len(ids)-defaultRecentLimit] {
		delete(c.recent, id)
	}
}

// Abort requests termination of the active job. It is a no-op returning
// false when no job is active or an abort is already in progress.
func (c *JobController) Abort(reason values.AbortReason) bool {
	c.mu.Lock()
	slot := c.active
	c.mu.Unlock()

	if slot == nil {
		return false
	}
	return slot.job.Abort(reason)
}

// State returns the controller state.
func (c *JobController) State() values.JobState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active returns the id of the job holding the slot, if any.
func (c *JobController) Active() (values.JobID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return 0, false
	}
	return c.active.job.ID(), true
}

// Subscribe registers an observer and returns a function that removes it.
func (c *JobController) Subscribe(o ports.Observer) (cancel func()) {
	c.mu.Lock()
	c.nextSubID++
	id := c.nextSubID
	c.subscribers = append(c.subscribers, subscription{id: id, observer: o})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subscribers {
			if s.id == id {
				c.subscribers = append(c.subscribers[:i:i], c.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (c *JobController) publish(e ports.Event) {
	c.mu.Lock()
	subs := c.subscribers
	c.mu.Unlock()

	for _, s := range subs {
		s.observer.OnEvent(e)
	}
}

// Wait blocks until job id has finished and returns its summary.
func (c *JobController) Wait(ctx context.Context, id values.JobID) (execution.JobSummary, error) {
	c.mu.Lock()
	slot, ok := c.recent[id]
	c.mu.Unlock()
	if !ok {
		return execution.JobSummary{}, apperrors.NewNotFoundError("job", id.String())
	}

	select {
	case <-slot.done:
	case <-ctx.Done():
		return execution.JobSummary{}, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return *slot.summary, nil
}

// WaitIdle blocks until no job holds the slot.
func (c *JobController) WaitIdle(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Record returns the stored record of a finished job, including every
// raw output line.
func (c *JobController) Record(ctx context.Context, id values.JobID) (*execution.JobRecord, error) {
	c.mu.Lock()
	slot, ok := c.recent[id]
	var summary *execution.JobSummary
	if ok {
		summary = slot.summary
	}
	c.mu.Unlock()

	if summary == nil {
		return nil, apperrors.NewNotFoundError("finished job", id.String())
	}
	if c.history == nil {
		return nil, errors.New("job history is not configured")
	}
	return c.history.FindByID(ctx, summary.RunID)
}

// Shutdown aborts the active job, if any, and waits for the slot to be released.
func (c *JobController) Shutdown(ctx context.Context) error {
	c.Abort(values.AbortShutdown)
	return c.WaitIdle(ctx)
}
