package editor

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
	"github.com/sourcegraph/conc"

	"github.com/grantedit/grantedit/internal/policy"
	"github.com/grantedit/grantedit/pkg/cerr"
	"github.com/grantedit/grantedit/pkg/clog"
	"github.com/grantedit/grantedit/pkg/panicerr"
	"github.com/grantedit/grantedit/pkg/storage"
)

type OpKind string

const (
	OpLoad      OpKind = "load"
	OpSave      OpKind = "save"
	OpNormalize OpKind = "normalize"
)

// Operation is the completion handle for one background load or save.
type Operation struct {
	ID   ulid.ULID
	Kind OpKind

	done chan struct{}
	err  error
}

func newOperation(kind OpKind) *Operation {
	return &Operation{
		ID:   ulid.Make(),
		Kind: kind,
		done: make(chan struct{}),
	}
}

// Done returns a channel closed when the operation completes.
func (o *Operation) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the operation completes or ctx is done. Waiting out the
// context does not cancel the operation; no operation supports cancellation
// once submitted.
func (o *Operation) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-o.done:
		return o.err
	}
}

// Session owns the model for one policy file and runs load and save as
// background units of work, each completing through an Operation handle. At
// most one operation is in flight per session; submitting another fails
// with Busy. The session adds no model-level synchronization beyond that:
// the caller must not mutate the model while a load is populating it, nor
// read it while a save is rendering it.
type Session struct {
	path       string
	store      storage.Store
	serializer *policy.Serializer
	logger     *slog.Logger

	model    *policy.Model
	inFlight atomic.Bool
	wg       *conc.WaitGroup
}

func NewSession(path string, store storage.Store, logger *slog.Logger) *Session {
	return &Session{
		path:       path,
		store:      store,
		serializer: policy.NewSerializer(),
		logger:     logger,
		model:      policy.NewModel(path),
		wg:         conc.NewWaitGroup(),
	}
}

func (s *Session) Path() string {
	return s.path
}

// Model returns the session's model. See the Session contract for the
// access rules around in-flight operations.
func (s *Session) Model() *policy.Model {
	return s.model
}

// Render returns the canonical text the model would be saved as right now.
func (s *Session) Render() string {
	return s.serializer.Render(s.model)
}

// Load replaces the model with the parsed contents of the policy file.
// Mutations made after Load is submitted and before it completes are
// discarded together with the replaced model; callers that need stronger
// guarantees must order their own save-then-load barrier on the dirty flag.
func (s *Session) Load(ctx context.Context) (*Operation, error) {
	return s.submit(ctx, OpLoad, s.runLoad)
}

// Save renders the model and writes it out under an exclusive lock, then
// clears the dirty flag. A clean model makes Save a no-op.
func (s *Session) Save(ctx context.Context) (*Operation, error) {
	return s.submit(ctx, OpSave, s.runSave)
}

// Normalize reads the file, reparses it, and writes the canonical rendering
// back unconditionally. This is the rewrite-everything-it-doesn't-recognize
// pass exposed to the CLI as fmt.
func (s *Session) Normalize(ctx context.Context) (*Operation, error) {
	return s.submit(ctx, OpNormalize, s.runNormalize)
}

func (s *Session) submit(ctx context.Context, kind OpKind, run func(context.Context) error) (*Operation, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, cerr.NewError(cerr.Busy, "another operation is in flight", nil)
	}
	op := newOperation(kind)
	clog.AddAttribute(ctx, "op", string(kind))
	clog.AddAttribute(ctx, "op_id", op.ID.String())
	body := panicerr.SafeContext(run)
	s.wg.Go(func() {
		op.err = body(ctx)
		s.inFlight.Store(false)
		close(op.done)
	})
	return op, nil
}

// Wait blocks until all submitted operations have completed.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) runLoad(ctx context.Context) error {
	text, err := s.store.ReadText(ctx, s.path)
	if err != nil {
		wrapped := cerr.WrapReadError(s.path, err)
		clog.AddError(ctx, wrapped)
		s.logger.WarnContext(ctx, "failed to load policy file", "path", s.path)
		return wrapped
	}
	s.model = policy.Parse(s.path, text)
	s.logger.InfoContext(ctx, "policy file loaded",
		"path", s.path, "codebases", len(s.model.Codebases()))
	return nil
}

func (s *Session) runSave(ctx context.Context) error {
	if !s.model.Dirty() {
		s.logger.DebugContext(ctx, "no changes to save", "path", s.path)
		return nil
	}
	content := s.serializer.Render(s.model)
	if err := s.store.WriteText(ctx, s.path, content); err != nil {
		wrapped := cerr.WrapWriteError(s.path, err)
		clog.AddError(ctx, wrapped)
		s.logger.WarnContext(ctx, "failed to save policy file", "path", s.path)
		return wrapped
	}
	s.model.MarkClean()
	s.logger.InfoContext(ctx, "policy file saved", "path", s.path)
	return nil
}

func (s *Session) runNormalize(ctx context.Context) error {
	// Two separate lock scopes: a shared lock for the read, an exclusive
	// lock for the write. Locks are never held across the parse in between.
	text, err := s.store.ReadText(ctx, s.path)
	if err != nil {
		wrapped := cerr.WrapReadError(s.path, err)
		clog.AddError(ctx, wrapped)
		return wrapped
	}
	s.model = policy.Parse(s.path, text)
	content := s.serializer.Render(s.model)
	if err := s.store.WriteText(ctx, s.path, content); err != nil {
		wrapped := cerr.WrapWriteError(s.path, err)
		clog.AddError(ctx, wrapped)
		return wrapped
	}
	s.model.MarkClean()
	s.logger.InfoContext(ctx, "policy file normalized", "path", s.path)
	return nil
}
