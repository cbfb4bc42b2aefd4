// Package api defines the wire types of the HTTP surface.
package api

// Message is one conversation turn as submitted by a client. Only user and
// assistant roles are accepted on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest asks for a pattern. Messages must be non-empty and end
// with a user turn.
type GenerateRequest struct {
	Messages []Message `json:"messages"`
}

// GenerateResponse is the synchronous generation result.
type GenerateResponse struct {
	Content    string `json:"content"`
	Iterations int    `json:"iterations"`
	TimeMS     int64  `json:"time_ms"`
	Validated  bool   `json:"validated"`
}

// ErrorResponse reports a failed or budget-terminated request.
type ErrorResponse struct {
	Error          string `json:"error"`
	BudgetExceeded bool   `json:"budget_exceeded,omitempty"`
}

type ValidateRequest struct {
	Code string `json:"code"`
}

type ValidateResponse struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// GenresResponse lists the genres the reference tool can serve.
type GenresResponse struct {
	Genres []string `json:"genres"`
}

type PingResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
