// Package tools applies model-issued function calls to the user's calendar and
// documents.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/state"

	"github.com/google/uuid"
)

const module = "TOOLS"

// Executor runs function calls against one user's state. It never panics past
// its boundary and never returns an error: every outcome is a Result.
type Executor struct {
	store  state.Store
	logger logger.ILogger
	loc    *time.Location
	now    func() time.Time
	newId  func() string
}

type ExecutorOption func(*Executor)

// WithClock overrides the time source, used for "today" in list_events.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) { e.now = now }
}

func WithIdGenerator(fn func() string) ExecutorOption {
	return func(e *Executor) { e.newId = fn }
}

func NewExecutor(store state.Store, logger logger.ILogger, loc *time.Location, opts ...ExecutorOption) *Executor {
	if loc == nil {
		loc = time.Local
	}
	e := &Executor{
		store:  store,
		logger: logger,
		loc:    loc,
		now:    time.Now,
		newId:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs a single call and returns exactly one result keyed by the call id.
func (e *Executor) Execute(ctx context.Context, call llm.FunctionCall) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = fail(fmt.Sprintf("tool %s crashed: %v", call.Name, r))
		}
		res.Id = call.Id
		res.Name = call.Name
		if !res.Success {
			e.logger.Warn(module, "Tool call failed", map[string]interface{}{
				"tool":  call.Name,
				"error": res.Error,
			})
		}
	}()

	switch call.Name {
	case ScheduleEvent:
		return e.scheduleEvent(ctx, call.Args)
	case MarkEventAsCompleted:
		return e.markEventAsCompleted(ctx, call.Args)
	case ListEvents:
		return e.listEvents(ctx, call.Args)
	case ReplaceText:
		return e.replaceText(ctx, call.Args)
	case ApplyFormat:
		return e.applyFormat(ctx, call.Args)
	default:
		return fail(fmt.Sprintf("unknown tool %q", call.Name))
	}
}

// ExecuteAll runs calls serially. A failed call does not stop its siblings.
func (e *Executor) ExecuteAll(ctx context.Context, calls []llm.FunctionCall) []Result {
	results := make([]Result, 0, len(calls))
	for _, call := range calls {
		results = append(results, e.Execute(ctx, call))
	}
	return results
}

// update runs fn through the store and turns a failure into a failed Result.
func (e *Executor) update(ctx context.Context, fn state.Mutator) (*entity.AppState, *Result) {
	s, err := e.store.Update(ctx, fn)
	if err != nil {
		var f *failure
		if errors.As(err, &f) {
			r := fail(f.msg)
			return nil, &r
		}
		r := fail(fmt.Sprintf("could not save changes: %v", err))
		return nil, &r
	}
	return s, nil
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// rawStringArg keeps surrounding whitespace, which matters for exact matches.
func rawStringArg(args map[string]any, key string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}
