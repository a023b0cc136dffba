package command

// Stable failure codes surfaced through Result. They are part of the
// external contract: transports and UIs switch on them.
const (
	CodeUnauthorized    = "COMMAND_UNAUTHORIZED"
	CodeUnknownType     = "UNKNOWN_COMMAND_TYPE"
	CodeExecutionFailed = "COMMAND_EXECUTION_FAILED"
)

// Error is a recoverable business failure returned by a handler or produced
// by the dispatcher itself. It is never thrown across the dispatch boundary.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// Result is the normalized outcome of executing one command.
type Result struct {
	Success bool   `json:"success"`
	Err     *Error `json:"error,omitempty"`
}

func OK() Result { return Result{Success: true} }

func Fail(code, message string) Result {
	return Result{Err: &Error{Code: code, Message: message}}
}

func FailErr(err *Error) Result { return Result{Err: err} }
