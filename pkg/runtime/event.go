package runtime

// Event is one item on a run's progress stream. Every stream starts with
// exactly one StartedEvent and ends with exactly one CompleteEvent or
// ErrorEvent; Progress and Tools events appear between them in any number.
type Event interface {
	isEvent()
	Kind() string
}

// StartedEvent opens a stream and carries the session the run is bound to.
type StartedEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

func Started(sessionID string) Event {
	return &StartedEvent{
		Type:      "started",
		SessionID: sessionID,
	}
}

func (e *StartedEvent) isEvent()     {}
func (e *StartedEvent) Kind() string { return e.Type }

// ProgressEvent reports that another iteration is about to run.
type ProgressEvent struct {
	Type      string `json:"type"`
	Iteration int    `json:"iteration"`
	Status    string `json:"status"`
}

func Progress(iteration int, status string) Event {
	return &ProgressEvent{
		Type:      "progress",
		Iteration: iteration,
		Status:    status,
	}
}

func (e *ProgressEvent) isEvent()     {}
func (e *ProgressEvent) Kind() string { return e.Type }

// ToolsEvent announces the tools about to run in one dispatch round.
type ToolsEvent struct {
	Type      string   `json:"type"`
	Iteration int      `json:"iteration"`
	Tools     []string `json:"tools"`
	Status    string   `json:"status"`
}

func Tools(iteration int, toolNames []string, status string) Event {
	return &ToolsEvent{
		Type:      "tools",
		Iteration: iteration,
		Tools:     toolNames,
		Status:    status,
	}
}

func (e *ToolsEvent) isEvent()     {}
func (e *ToolsEvent) Kind() string { return e.Type }

// Terminal statuses for CompleteEvent. Running out of budget is a normal
// outcome, not an error, so it terminates through CompleteEvent with its own
// status.
const (
	StatusCompleted      = "completed"
	StatusBudgetExceeded = "budget_exceeded"
)

// CompleteEvent closes a stream with the final assistant content. Validated
// reports whether the fenced pattern in Content passed an independent
// validation pass; it is false when Content has no fenced code block.
type CompleteEvent struct {
	Type       string `json:"type"`
	Status     string `json:"status"`
	Content    string `json:"content"`
	Iterations int    `json:"iterations"`
	ElapsedMS  int64  `json:"time_ms"`
	Validated  bool   `json:"validated"`
}

func Complete(status, content string, iterations int, elapsedMS int64, validated bool) Event {
	return &CompleteEvent{
		Type:       "complete",
		Status:     status,
		Content:    content,
		Iterations: iterations,
		ElapsedMS:  elapsedMS,
		Validated:  validated,
	}
}

func (e *CompleteEvent) isEvent()     {}
func (e *CompleteEvent) Kind() string { return e.Type }

// ErrorEvent closes a stream after an unrecoverable failure.
type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func Error(msg string) Event {
	return &ErrorEvent{
		Type:  "error",
		Error: msg,
	}
}

func (e *ErrorEvent) isEvent()     {}
func (e *ErrorEvent) Kind() string { return e.Type }
