package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/plandeck/internal/session"
)

// Command is a unit of work run against the session on the loop goroutine.
type Command struct {
	// Name identifies the command in logs and errors.
	Name string

	Run func(ctx context.Context, s *session.Session) (any, error)
}

// Result is a command's outcome. Err is a *CommandError or ErrStopped.
type Result struct {
	Seq   int64
	Value any
	Err   error
}

// Engine is the single-writer loop owning one session.
//
// Thread-safety model:
//   - Submit(), Do(), Stop(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
type Engine struct {
	session *session.Session
	queue   *requestQueue
	clock   *Clock
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine for s.
func New(s *session.Session, opts ...Option) *Engine {
	e := &Engine{
		session: s,
		queue:   newRequestQueue(),
		clock:   NewClock(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit queues cmd and returns the channel its result will be delivered
// on. The channel is buffered; the engine never blocks on it.
// Thread-safe: may be called from any goroutine.
func (e *Engine) Submit(cmd Command) (<-chan Result, error) {
	req := request{seq: e.clock.Next(), cmd: cmd, reply: make(chan Result, 1)}
	if !e.queue.Enqueue(req) {
		return nil, ErrStopped
	}
	return req.reply, nil
}

// Do submits cmd and waits for its result or for ctx to end.
func (e *Engine) Do(ctx context.Context, cmd Command) (any, error) {
	reply, err := e.Submit(cmd)
	if err != nil {
		return nil, err
	}
	select {
	case res := <-reply:
		return res.Value, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// QueueLen returns the number of commands waiting to run.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Run executes queued commands until ctx is cancelled or Stop is called.
// Queued commands run before cancellation is observed. Commands still
// queued once Run exits are answered with ErrStopped.
//
// CRITICAL: Must be called from exactly ONE goroutine.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Debug("engine starting")

	for {
		if req, ok := e.queue.TryDequeue(); ok {
			req.reply <- e.execute(ctx, req)
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Debug("engine stopping: context cancelled")
			for _, req := range e.queue.Drain() {
				req.reply <- Result{Seq: req.seq, Err: ErrStopped}
			}
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes when the queue is closed.
			if e.queue.Len() == 0 && e.stopped() {
				e.logger.Debug("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run returns once the queue is empty.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) stopped() bool {
	e.queue.mu.Lock()
	defer e.queue.mu.Unlock()
	return e.queue.closed
}

// execute runs one command, converting failures and panics into
// CommandErrors. Called only from Run.
func (e *Engine) execute(ctx context.Context, req request) (res Result) {
	res.Seq = req.seq

	defer func() {
		if r := recover(); r != nil {
			res.Value = nil
			res.Err = &CommandError{
				Code:    ErrCodeCommandPanic,
				Seq:     req.seq,
				Command: req.cmd.Name,
				Err:     fmt.Errorf("panic: %v", r),
			}
			e.logger.Error("command panicked", "command", req.cmd.Name, "seq", req.seq, "panic", r)
		}
	}()

	if req.cmd.Run == nil {
		res.Err = &CommandError{Code: ErrCodeCommandFailed, Seq: req.seq, Command: req.cmd.Name,
			Err: fmt.Errorf("command has no Run function")}
		return res
	}

	v, err := req.cmd.Run(ctx, e.session)
	if err != nil {
		// Log and continue: the next command sees the unchanged session.
		e.logger.Warn("command failed", "command", req.cmd.Name, "seq", req.seq, "error", err)
		res.Err = &CommandError{Code: ErrCodeCommandFailed, Seq: req.seq, Command: req.cmd.Name, Err: err}
		return res
	}

	e.logger.Debug("command done", "command", req.cmd.Name, "seq", req.seq)
	res.Value = v
	return res
}
