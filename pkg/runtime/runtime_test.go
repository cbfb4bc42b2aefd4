package runtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YNCK000/strudel-studio/pkg/chat"
	"github.com/YNCK000/strudel-studio/pkg/provider"
	"github.com/YNCK000/strudel-studio/pkg/session"
	"github.com/YNCK000/strudel-studio/pkg/tools"
	"github.com/YNCK000/strudel-studio/pkg/tools/builtin"
)

const validAnswer = "Here is your beat:\n\n```javascript\nsetcps(124/4/60)\nstack(s(\"bd*4\"), s(\"~ cp ~ cp\"))\n```\n\nEnjoy!"

// scripted replays a fixed sequence of turns; once exhausted it repeats the
// last one. err, when set, fails every call.
type scripted struct {
	mu    sync.Mutex
	turns []provider.Response
	err   error
	calls int
}

func (p *scripted) CreateMessage(context.Context, string, []chat.Message, []tools.Tool) (*provider.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	idx := min(p.calls-1, len(p.turns)-1)
	turn := p.turns[idx]
	return &turn, nil
}

func (p *scripted) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func endTurn(content string) provider.Response {
	return provider.Response{Content: content, StopReason: provider.StopEndTurn}
}

func toolTurn(content string, calls ...tools.ToolCall) provider.Response {
	return provider.Response{Content: content, ToolCalls: calls, StopReason: provider.StopToolUse}
}

func validateCall(id, code string) tools.ToolCall {
	return tools.ToolCall{
		ID:   id,
		Type: "function",
		Function: tools.FunctionCall{
			Name:      "validate_strudel_code",
			Arguments: `{"code": ` + code + `}`,
		},
	}
}

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()

	var out []Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func newRuntime(p provider.Provider, budget Budget) *Runtime {
	return New(p, tools.NewRegistry(builtin.NewGenreLookupTool(), builtin.NewValidateTool()), budget)
}

func TestRunStreamSingleTurn(t *testing.T) {
	t.Parallel()

	p := &scripted{turns: []provider.Response{endTurn(validAnswer)}}
	rt := newRuntime(p, PatientBudget)
	sess := session.New(session.WithUserMessage("house beat"))

	events := collect(t, rt.RunStream(context.Background(), sess))

	require.Len(t, events, 3)
	started, ok := events[0].(*StartedEvent)
	require.True(t, ok)
	assert.Equal(t, sess.ID, started.SessionID)

	progress, ok := events[1].(*ProgressEvent)
	require.True(t, ok)
	assert.Equal(t, 1, progress.Iteration)
	assert.Equal(t, "Generating pattern", progress.Status)

	complete, ok := events[2].(*CompleteEvent)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, complete.Status)
	assert.Equal(t, 1, complete.Iterations)
	assert.True(t, complete.Validated)
	assert.Equal(t, validAnswer, complete.Content)
}

func TestRunStreamToolRound(t *testing.T) {
	t.Parallel()

	p := &scripted{turns: []provider.Response{
		toolTurn("Let me check that.", validateCall("call-1", `"setcps(124/4/60)\ns(\"bd*4\")"`)),
		endTurn(validAnswer),
	}}
	rt := newRuntime(p, PatientBudget)
	sess := session.New(session.WithUserMessage("house beat"))

	events := collect(t, rt.RunStream(context.Background(), sess))

	// started, progress, tools, progress, complete.
	require.Len(t, events, 5)
	assert.IsType(t, &StartedEvent{}, events[0])
	assert.IsType(t, &ProgressEvent{}, events[1])

	toolsEv, ok := events[2].(*ToolsEvent)
	require.True(t, ok)
	assert.Equal(t, []string{"validate_strudel_code"}, toolsEv.Tools)
	assert.Equal(t, "Validating the pattern", toolsEv.Status)

	progress, ok := events[3].(*ProgressEvent)
	require.True(t, ok)
	assert.Equal(t, 2, progress.Iteration)
	assert.Equal(t, "Refining the pattern", progress.Status)

	complete, ok := events[4].(*CompleteEvent)
	require.True(t, ok)
	assert.Equal(t, 2, complete.Iterations)

	// Transcript: user, assistant with tool call, tool result, final answer.
	require.Len(t, sess.Messages, 4)
	assert.Equal(t, chat.MessageRoleTool, sess.Messages[2].Role)
	assert.Equal(t, "call-1", sess.Messages[2].ToolCallID)
	assert.Contains(t, sess.Messages[2].Content, "passed")
}

func TestRunStreamIterationBudget(t *testing.T) {
	t.Parallel()

	p := &scripted{turns: []provider.Response{
		toolTurn("", validateCall("call-1", `"setcps(1)"`)),
	}}
	rt := newRuntime(p, Budget{MaxIterations: 3})
	sess := session.New(session.WithUserMessage("never finishes"))

	events := collect(t, rt.RunStream(context.Background(), sess))

	// A capability that always asks for tools gets exactly MaxIterations
	// model calls before the run terminates.
	assert.Equal(t, 3, p.callCount())

	complete, ok := events[len(events)-1].(*CompleteEvent)
	require.True(t, ok)
	assert.Equal(t, StatusBudgetExceeded, complete.Status)
	assert.Equal(t, 3, complete.Iterations)
	assert.Contains(t, complete.Content, "simpler")
}

func TestRunStreamWallClockBudget(t *testing.T) {
	t.Parallel()

	p := &scripted{turns: []provider.Response{endTurn(validAnswer)}}
	rt := newRuntime(p, Budget{MaxIterations: 10, WallClock: time.Nanosecond})
	sess := session.New(session.WithUserMessage("anything"))

	events := collect(t, rt.RunStream(context.Background(), sess))

	// The wall clock is checked before each model call, so an exhausted
	// clock means no further invocation.
	assert.Zero(t, p.callCount())

	complete, ok := events[len(events)-1].(*CompleteEvent)
	require.True(t, ok)
	assert.Equal(t, StatusBudgetExceeded, complete.Status)
}

func TestRunStreamSlowCallStopsBeforeSecondInvocation(t *testing.T) {
	t.Parallel()

	// One slow tool turn spends the whole wall clock; no second model call
	// may start after it.
	p := &slowProvider{
		delay: 30 * time.Millisecond,
		turn:  toolTurn("", validateCall("call-1", `"setcps(1)"`)),
	}
	rt := newRuntime(p, Budget{MaxIterations: 10, WallClock: 10 * time.Millisecond})

	events := collect(t, rt.RunStream(context.Background(), session.New()))

	assert.Equal(t, int64(1), p.calls.Load())

	complete, ok := events[len(events)-1].(*CompleteEvent)
	require.True(t, ok)
	assert.Equal(t, StatusBudgetExceeded, complete.Status)
}

type slowProvider struct {
	delay time.Duration
	turn  provider.Response
	calls atomic.Int64
}

func (p *slowProvider) CreateMessage(context.Context, string, []chat.Message, []tools.Tool) (*provider.Response, error) {
	p.calls.Add(1)
	time.Sleep(p.delay)
	turn := p.turn
	return &turn, nil
}

func TestRunStreamProviderError(t *testing.T) {
	t.Parallel()

	p := &scripted{err: &provider.RateLimitError{Err: errors.New("429")}}
	rt := newRuntime(p, FastBudget)
	sess := session.New(session.WithUserMessage("anything"))

	events := collect(t, rt.RunStream(context.Background(), sess))

	require.Len(t, events, 3)
	errEv, ok := events[2].(*ErrorEvent)
	require.True(t, ok)
	assert.Contains(t, errEv.Error, "rate limited")
}

func TestRunStreamTerminalInvariants(t *testing.T) {
	t.Parallel()

	scenarios := []struct {
		name string
		p    *scripted
	}{
		{name: "completion", p: &scripted{turns: []provider.Response{endTurn("done")}}},
		{name: "error", p: &scripted{err: errors.New("boom")}},
		{name: "budget", p: &scripted{turns: []provider.Response{toolTurn("", validateCall("c", `""`))}}},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			t.Parallel()

			rt := newRuntime(sc.p, Budget{MaxIterations: 2})
			events := collect(t, rt.RunStream(context.Background(), session.New()))

			var started, terminal int
			for i, ev := range events {
				switch ev.(type) {
				case *StartedEvent:
					started++
					assert.Equal(t, 0, i, "started must be first")
				case *CompleteEvent, *ErrorEvent:
					terminal++
					assert.Equal(t, len(events)-1, i, "terminal must be last")
				}
			}
			assert.Equal(t, 1, started)
			assert.Equal(t, 1, terminal)
		})
	}
}

func TestRunStreamValidatedIsRederived(t *testing.T) {
	t.Parallel()

	// The model claims success but the pattern is missing its tempo; the
	// terminal verdict comes from an independent validation pass.
	answer := "Validated and ready!\n\n```javascript\nstack(s(\"bd*4\"))\n```"
	p := &scripted{turns: []provider.Response{endTurn(answer)}}
	rt := newRuntime(p, PatientBudget)

	events := collect(t, rt.RunStream(context.Background(), session.New()))

	complete, ok := events[len(events)-1].(*CompleteEvent)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, complete.Status)
	assert.False(t, complete.Validated)
}

func TestRunStreamNoCodeBlockNotValidated(t *testing.T) {
	t.Parallel()

	p := &scripted{turns: []provider.Response{endTurn("I could not produce a pattern.")}}
	rt := newRuntime(p, PatientBudget)

	events := collect(t, rt.RunStream(context.Background(), session.New()))

	complete, ok := events[len(events)-1].(*CompleteEvent)
	require.True(t, ok)
	assert.False(t, complete.Validated)
}

func TestRunStreamDefensiveStopReasons(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		turn provider.Response
	}{
		{name: "unknown stop reason", turn: provider.Response{Content: "done", StopReason: "pause_turn"}},
		{name: "tool use stop without tool calls", turn: provider.Response{Content: "done", StopReason: provider.StopToolUse}},
		{name: "token limit", turn: provider.Response{Content: "done", StopReason: provider.StopMaxTokens}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := &scripted{turns: []provider.Response{tc.turn}}
			rt := newRuntime(p, PatientBudget)

			events := collect(t, rt.RunStream(context.Background(), session.New()))

			complete, ok := events[len(events)-1].(*CompleteEvent)
			require.True(t, ok)
			assert.Equal(t, StatusCompleted, complete.Status)
			assert.Equal(t, "done", complete.Content)
		})
	}
}

func TestRunSync(t *testing.T) {
	t.Parallel()

	t.Run("completion returns the terminal event", func(t *testing.T) {
		t.Parallel()

		p := &scripted{turns: []provider.Response{endTurn(validAnswer)}}
		rt := newRuntime(p, FastBudget)

		complete, err := rt.Run(context.Background(), session.New(session.WithUserMessage("beat")))

		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, complete.Status)
	})

	t.Run("budget exceeded is not an error", func(t *testing.T) {
		t.Parallel()

		p := &scripted{turns: []provider.Response{toolTurn("", validateCall("c", `""`))}}
		rt := newRuntime(p, Budget{MaxIterations: 1})

		complete, err := rt.Run(context.Background(), session.New())

		require.NoError(t, err)
		assert.Equal(t, StatusBudgetExceeded, complete.Status)
	})

	t.Run("error terminal becomes an error", func(t *testing.T) {
		t.Parallel()

		p := &scripted{err: errors.New("boom")}
		rt := newRuntime(p, FastBudget)

		_, err := rt.Run(context.Background(), session.New())

		assert.ErrorContains(t, err, "boom")
	})
}

func TestDispatchStatus(t *testing.T) {
	t.Parallel()

	lookup := tools.ToolCall{Function: tools.FunctionCall{Name: "lookup_genre_reference"}}
	validate := tools.ToolCall{Function: tools.FunctionCall{Name: "validate_strudel_code"}}
	other := tools.ToolCall{Function: tools.FunctionCall{Name: "something_else"}}

	assert.Equal(t, "Validating the pattern", dispatchStatus([]tools.ToolCall{validate}))
	assert.Equal(t, "Consulting the genre reference", dispatchStatus([]tools.ToolCall{lookup, lookup}))
	assert.Equal(t, "Running tools", dispatchStatus([]tools.ToolCall{lookup, validate}))
	assert.Equal(t, "Running tools", dispatchStatus([]tools.ToolCall{other}))
}

func TestExtractPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "javascript fence",
			content: "text\n```javascript\nsetcps(1)\n```\nmore",
			want:    "setcps(1)",
		},
		{
			name:    "js fence",
			content: "```js\ns(\"bd\")\n```",
			want:    `s("bd")`,
		},
		{
			name:    "bare fence",
			content: "```\nnote(\"c\")\n```",
			want:    `note("c")`,
		},
		{
			name:    "first of several blocks",
			content: "```js\nfirst()\n```\n```js\nsecond()\n```",
			want:    "first()",
		},
		{
			name:    "no block",
			content: "just prose",
			want:    "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, extractPattern(tc.content))
		})
	}
}
