package tools

// Result is the outcome of one function call. It is always produced, even when
// the call fails, so the model can react to the failure in conversation.
type Result struct {
	Id      string
	Name    string
	Success bool
	Message string
	Error   string
}

// ToResponse renders the result as the payload sent back to the model.
func (r Result) ToResponse() map[string]any {
	if r.Success {
		return map[string]any{"success": true, "message": r.Message}
	}
	return map[string]any{"success": false, "error": r.Error}
}

// Text is the human readable outcome.
func (r Result) Text() string {
	if r.Success {
		return r.Message
	}
	return r.Error
}

func ok(message string) Result {
	return Result{Success: true, Message: message}
}

func fail(message string) Result {
	return Result{Success: false, Error: message}
}

// failure carries a user facing message out of a state mutator so the update is
// discarded and the message becomes the tool result.
type failure struct {
	msg string
}

func (f *failure) Error() string { return f.msg }

func failf(msg string) error {
	return &failure{msg: msg}
}
