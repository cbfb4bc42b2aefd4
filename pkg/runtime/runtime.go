// Package runtime drives the generation loop: it alternates model turns with
// tool dispatch until the model produces a final answer or the run budget is
// spent, reporting progress as a stream of events.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/YNCK000/strudel-studio/pkg/chat"
	"github.com/YNCK000/strudel-studio/pkg/provider"
	"github.com/YNCK000/strudel-studio/pkg/session"
	"github.com/YNCK000/strudel-studio/pkg/tools"
)

// Budget bounds one run. MaxIterations caps model invocations; WallClock,
// when non-zero, caps elapsed time. Both are checked before each model call,
// never mid-call.
type Budget struct {
	MaxIterations int
	WallClock     time.Duration
}

var (
	// FastBudget fits interactive synchronous requests.
	FastBudget = Budget{MaxIterations: 4, WallClock: 25 * time.Second}

	// PatientBudget fits streaming requests where the client watches
	// progress and can cancel on its own.
	PatientBudget = Budget{MaxIterations: 10}
)

type Runtime struct {
	provider provider.Provider
	registry *tools.Registry
	budget   Budget
}

func New(p provider.Provider, registry *tools.Registry, budget Budget) *Runtime {
	return &Runtime{
		provider: p,
		registry: registry,
		budget:   budget,
	}
}

// RunStream executes the generation loop for sess and returns its event
// stream. The channel yields exactly one StartedEvent first and is closed
// after exactly one terminal event, either CompleteEvent or ErrorEvent.
// The session transcript is mutated as the run progresses.
func (rt *Runtime) RunStream(ctx context.Context, sess *session.Session) <-chan Event {
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		rt.run(ctx, sess, events)
	}()
	return events
}

func (rt *Runtime) run(ctx context.Context, sess *session.Session, events chan<- Event) {
	start := time.Now()
	events <- Started(sess.ID)

	iteration := 0
	lastContent := ""

	for {
		// Wall clock first: a single slow model call can spend the whole
		// allowance, and a second call must not start once it has.
		if rt.budget.WallClock > 0 && time.Since(start) >= rt.budget.WallClock {
			slog.Debug("Wall clock budget spent", "session_id", sess.ID, "elapsed", time.Since(start))
			rt.finishBudget(events, lastContent, iteration, start)
			return
		}
		if iteration >= rt.budget.MaxIterations {
			slog.Debug("Iteration budget spent", "session_id", sess.ID, "iterations", iteration)
			rt.finishBudget(events, lastContent, iteration, start)
			return
		}
		iteration++
		events <- Progress(iteration, progressStatus(iteration))

		resp, err := rt.provider.CreateMessage(ctx, systemPrompt, sess.Messages, rt.registry.Tools())
		if err != nil {
			slog.Error("Model call failed", "session_id", sess.ID, "iteration", iteration, "error", err)
			events <- Error(err.Error())
			return
		}

		sess.AddMessage(chat.Message{
			Role:      chat.MessageRoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		if resp.Content != "" {
			lastContent = resp.Content
		}

		if len(resp.ToolCalls) > 0 {
			events <- Tools(iteration, toolNames(resp.ToolCalls), dispatchStatus(resp.ToolCalls))
			rt.dispatch(ctx, sess, resp.ToolCalls)
			continue
		}

		switch resp.StopReason {
		case provider.StopEndTurn:
		case provider.StopToolUse:
			// A tool_use stop with no actual calls; nothing to dispatch, so
			// the text that is present counts as the answer.
			slog.Debug("Tool use stop without tool calls", "session_id", sess.ID, "iteration", iteration)
		case provider.StopMaxTokens:
			slog.Debug("Turn truncated at token limit", "session_id", sess.ID, "iteration", iteration)
		default:
			slog.Debug("Unknown stop reason, treating as completion", "session_id", sess.ID, "stop_reason", resp.StopReason)
		}

		events <- Complete(StatusCompleted, resp.Content, iteration, time.Since(start).Milliseconds(), verifyPattern(resp.Content))
		return
	}
}

func (rt *Runtime) finishBudget(events chan<- Event, lastContent string, iterations int, start time.Time) {
	content := lastContent + budgetGuidance
	events <- Complete(StatusBudgetExceeded, content, iterations, time.Since(start).Milliseconds(), verifyPattern(lastContent))
}

// dispatch runs every tool call from one turn and appends the results to the
// session in call order. Calls are independent, so they run concurrently;
// the registry guarantees each produces a result string.
func (rt *Runtime) dispatch(ctx context.Context, sess *session.Session, calls []tools.ToolCall) {
	results := make([]string, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			results[i] = rt.registry.Call(gctx, call)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	for i, call := range calls {
		sess.AddMessage(chat.Message{
			Role:       chat.MessageRoleTool,
			Content:    results[i],
			ToolCallID: call.ID,
		})
	}
}

func progressStatus(iteration int) string {
	if iteration == 1 {
		return "Generating pattern"
	}
	return "Refining the pattern"
}

func toolNames(calls []tools.ToolCall) []string {
	names := make([]string, len(calls))
	for i, call := range calls {
		names[i] = call.Function.Name
	}
	return names
}

// dispatchStatus renders a human phrase for the tools event. Uniform rounds
// get a specific phrase, mixed rounds a generic one.
func dispatchStatus(calls []tools.ToolCall) string {
	name := calls[0].Function.Name
	for _, call := range calls[1:] {
		if call.Function.Name != name {
			return "Running tools"
		}
	}
	switch name {
	case "validate_strudel_code":
		return "Validating the pattern"
	case "lookup_genre_reference":
		return "Consulting the genre reference"
	default:
		return "Running tools"
	}
}

// Run executes the loop to completion without streaming. A budget-exceeded
// run still returns its CompleteEvent; only ErrorEvent terminals become
// errors.
func (rt *Runtime) Run(ctx context.Context, sess *session.Session) (*CompleteEvent, error) {
	var complete *CompleteEvent
	for ev := range rt.RunStream(ctx, sess) {
		switch e := ev.(type) {
		case *CompleteEvent:
			complete = e
		case *ErrorEvent:
			return nil, fmt.Errorf("generation failed: %s", e.Error)
		}
	}
	if complete == nil {
		return nil, fmt.Errorf("generation ended without a terminal event")
	}
	return complete, nil
}
