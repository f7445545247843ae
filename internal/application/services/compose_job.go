package services

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	apperrors "github.com/jessica-dev/jessica/internal/application/errors"
	"github.com/jessica-dev/jessica/internal/application/ports"
	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/execution"
	domainservices "github.com/jessica-dev/jessica/internal/domain/services"
	"github.com/jessica-dev/jessica/internal/domain/values"
	"golang.org/x/sync/errgroup"
)

// JobOutput is one item on a job's output channel: either a classified
// message together with the counts that include it, or an abort timeout
// notice.
type JobOutput struct {
	Message      *entities.LogMessage
	AbortTimeout *apperrors.AbortTimeoutError
	Counts       execution.SeverityCounts
}

// JobResult is what a job knows about its process once it has finished.
type JobResult struct {
	StartedAt     time.Time
	EndedAt       time.Time
	SpawnErr      error
	WaitErr       error
	AbortReason   values.AbortReason
	ExitCode      int
	AbortTimedOut bool
}

// ComposeJob supervises one run of the compose tool: it spawns the
// process, drains its combined output line by line through the
// classifier, and waits for it to exit. Lines are delivered on Output in
// emission order; Output is closed after the stream hit EOF and the
// process exited.
type ComposeJob struct {
	startedAt  time.Time
	runner     ports.ProcessRunner
	proc       ports.Process
	config     *entities.LaunchConfig
	classifier *domainservices.MessageClassifier
	logger     *slog.Logger
	out        chan JobOutput
	exited     chan struct{}
	done       chan struct{}
	messages   []entities.LogMessage
	result     JobResult
	terminator sync.WaitGroup
	grace      time.Duration
	counts     execution.SeverityCounts
	mu         sync.Mutex
	id         values.JobID
	finished   bool
}

// ComposeJobOptions configure a ComposeJob.
type ComposeJobOptions struct {
	Logger *slog.Logger
	// GracePeriod between the termination request and the forced kill
	GracePeriod time.Duration
	// Buffer is the capacity of the output channel
	Buffer int
}

// NewComposeJob creates a job that has not been started yet.
func NewComposeJob(
	id values.JobID,
	config *entities.LaunchConfig,
	runner ports.ProcessRunner,
	classifier *domainservices.MessageClassifier,
	opts ComposeJobOptions,
) *ComposeJob {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ComposeJob{
		id:         id,
		config:     config,
		runner:     runner,
		classifier: classifier,
		grace:      opts.GracePeriod,
		logger:     opts.Logger.With("job_id", id.String()),
		out:        make(chan JobOutput, opts.Buffer),
		exited:     make(chan struct{}),
		done:       make(chan struct{}),
		result:     JobResult{ExitCode: execution.ExitCodeNone},
	}
}

// ID returns the job id.
func (j *ComposeJob) ID() values.JobID { return j.id }

// Config returns the job's launch configuration.
func (j *ComposeJob) Config() *entities.LaunchConfig { return j.config }

// Output returns the channel of classified messages and notices.
func (j *ComposeJob) Output() <-chan JobOutput { return j.out }

// Done is closed once the job has fully finished.
func (j *ComposeJob) Done() <-chan struct{} { return j.done }

// Start spawns the process and returns once it is running. Draining and
// waiting continue in the background. A spawn failure is returned as a
// *apperrors.SpawnError and finishes the job immediately. A job aborted
// before Start finishes without spawning anything.
func (j *ComposeJob) Start(ctx context.Context) error {
	argv := j.config.Argv()
	j.mu.Lock()
	j.startedAt = time.Now()
	j.result.StartedAt = j.startedAt
	aborted := j.result.AbortReason != values.AbortNone
	j.mu.Unlock()

	if aborted {
		j.logger.Info("abort requested before spawn, not starting the process")
		j.finish()
		return nil
	}

	proc, err := j.runner.Start(ctx, ports.ProcessSpec{
		Argv: argv,
		Dir:  j.config.WorkDir(),
		Env:  j.config.Env(),
	})
	if err != nil {
		spawnErr := apperrors.NewSpawnError(argv[0], err)
		j.mu.Lock()
		j.result.SpawnErr = spawnErr
		j.mu.Unlock()
		j.finish()
		return spawnErr
	}

	j.logger.Info("compose process started", "pid", proc.PID(), "argv", strings.Join(argv, " "))

	j.mu.Lock()
	j.proc = proc
	pendingAbort := j.result.AbortReason != values.AbortNone
	if pendingAbort {
		j.terminator.Add(1)
	}
	j.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error { return j.drain(proc.Output()) })
	g.Go(func() error {
		code, err := proc.Wait()
		j.mu.Lock()
		j.result.ExitCode = code
		j.result.WaitErr = err
		j.mu.Unlock()
		close(j.exited)
		return nil
	})

	if pendingAbort {
		go j.terminate(proc)
	}

	go func() {
		if err := g.Wait(); err != nil {
			j.logger.Warn("output stream ended with error", "error", err)
		}
		j.finish()
	}()

	return nil
}

// drain reads the output stream to EOF. Lines are never dropped, also
// not after an abort request.
func (j *ComposeJob) drain(r io.Reader) error {
	stream := j.classifier.NewStream()
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			msg := stream.Next(line)

			j.mu.Lock()
			j.messages = append(j.messages, msg)
			if msg.Counted() {
				j.counts.Add(msg.Severity)
			}
			counts := j.counts
			j.mu.Unlock()

			j.out <- JobOutput{Message: &msg, Counts: counts}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// finish marks the job finished once no termination sequence is running
// any more, then closes the output channel.
func (j *ComposeJob) finish() {
	j.mu.Lock()
	j.finished = true
	j.result.EndedAt = time.Now()
	j.mu.Unlock()

	j.terminator.Wait()

	close(j.out)
	close(j.done)
}

// Abort requests termination. The first call wins and starts the single
// termination sequence; later calls and calls on a finished job are
// no-ops and return false. When the process is still being spawned, the
// sequence starts as soon as the spawn completes.
func (j *ComposeJob) Abort(reason values.AbortReason) bool {
	if reason == values.AbortNone {
		reason = values.AbortUser
	}

	j.mu.Lock()
	if j.finished || j.result.AbortReason != values.AbortNone {
		j.mu.Unlock()
		return false
	}
	j.result.AbortReason = reason
	proc := j.proc
	if proc != nil {
		j.terminator.Add(1)
	}
	j.mu.Unlock()

	j.logger.Info("abort requested", "reason", reason.String())
	if proc != nil {
		go j.terminate(proc)
	}
	return true
}

// terminate asks the process to exit and kills it if it is still alive
// after the grace period.
func (j *ComposeJob) terminate(proc ports.Process) {
	defer j.terminator.Done()

	if err := proc.Terminate(); err != nil {
		j.logger.Debug("terminate request failed", "error", err)
	}

	timer := time.NewTimer(j.grace)
	defer timer.Stop()

	select {
	case <-j.exited:
		return
	case <-timer.C:
	}

	if err := proc.Kill(); err != nil {
		j.logger.Debug("kill failed", "error", err)
	}

	timeoutErr := apperrors.NewAbortTimeoutError(j.id.String(), j.grace)
	j.logger.Warn("process ignored termination request", "grace_period", j.grace, "pid", proc.PID())

	j.mu.Lock()
	j.result.AbortTimedOut = true
	counts := j.counts
	j.mu.Unlock()

	j.out <- JobOutput{AbortTimeout: timeoutErr, Counts: counts}
}

// AbortRequested reports whether Abort has been accepted.
func (j *ComposeJob) AbortRequested() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result.AbortReason != values.AbortNone
}

// Messages returns a snapshot of the classified messages so far.
func (j *ComposeJob) Messages() []entities.LogMessage {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]entities.LogMessage(nil), j.messages...)
}

// Counts returns the current severity counts.
func (j *ComposeJob) Counts() execution.SeverityCounts {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.counts
}

// Result returns the process result. It is final once Done is closed.
func (j *ComposeJob) Result() JobResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}
