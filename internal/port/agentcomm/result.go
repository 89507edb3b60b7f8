package agentcomm

import "encoding/json"

// Result is the three-state outcome of an agent call. Exactly one state
// holds: Ok (response data present), Absent (the agent never answered
// successfully within the retry budget), or a Failure (an explicit,
// non-retryable fault such as a missing endpoint registration). The split
// lets callers discriminate configuration failures from transient ones.
type Result struct {
	data json.RawMessage
	err  error
}

// Success wraps a successful response body.
func Success(data json.RawMessage) Result {
	return Result{data: data}
}

// NoData is the absent result: attempts exhausted, nothing usable returned.
func NoData() Result {
	return Result{}
}

// Failure wraps an explicit fault.
func Failure(err error) Result {
	return Result{err: err}
}

// Ok reports whether the call produced response data.
func (r Result) Ok() bool {
	return r.err == nil && r.data != nil
}

// Absent reports whether the call exhausted its attempts without data.
func (r Result) Absent() bool {
	return r.err == nil && r.data == nil
}

// Err returns the recorded fault, nil unless the result is a failure.
func (r Result) Err() error {
	return r.err
}

// Data returns the raw response body, nil unless the result is Ok.
func (r Result) Data() json.RawMessage {
	return r.data
}
