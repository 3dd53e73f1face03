// File: fake/request.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"sync"

	"github.com/momentics/hostbridge/api"
)

type requestState int

const (
	requestPending requestState = iota
	requestOK
	requestErr
	requestCorrupt
)

// Request is a fake one-shot host operation. It implements
// api.Requestable, api.Abortable and api.Suppressible, and owns an
// embedded Target on which completion events are dispatched.
type Request struct {
	mu         sync.Mutex
	state      requestState
	value      any
	err        error
	aborted    bool
	suppressed bool

	// Events is the target bridges attach their listeners to.
	Events *Target
}

// NewRequest creates a pending request.
func NewRequest() *Request {
	return &Request{Events: NewTarget()}
}

// Complete resolves the request successfully and dispatches the success
// event to attached listeners.
func (r *Request) Complete(v any) {
	r.mu.Lock()
	r.state = requestOK
	r.value = v
	r.mu.Unlock()
	r.Events.Dispatch(api.KindSuccess, v)
}

// Fail resolves the request with err and dispatches the error event.
func (r *Request) Fail(err error) {
	r.mu.Lock()
	r.state = requestErr
	r.err = err
	r.mu.Unlock()
	r.Events.Dispatch(api.KindError, err)
}

// IsPending implements api.Requestable.
func (r *Request) IsPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == requestPending
}

// Result implements api.Requestable.
func (r *Request) Result() (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != requestOK {
		return nil, false
	}
	return r.value, true
}

// Err implements api.Requestable.
func (r *Request) Err() (error, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != requestErr {
		return nil, false
	}
	return r.err, true
}

// Abort implements api.Abortable.
func (r *Request) Abort() error {
	r.mu.Lock()
	r.aborted = true
	r.mu.Unlock()
	return nil
}

// SuppressErrorDefault implements api.Suppressible.
func (r *Request) SuppressErrorDefault() {
	r.mu.Lock()
	r.suppressed = true
	r.mu.Unlock()
}

// Aborted reports whether Abort was called.
func (r *Request) Aborted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aborted
}

// Suppressed reports whether SuppressErrorDefault was called.
func (r *Request) Suppressed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suppressed
}

// Corrupt forces the request into a state that is neither pending nor
// terminal. Used to exercise invariant-violation handling.
func (r *Request) Corrupt() {
	r.mu.Lock()
	r.state = requestCorrupt
	r.mu.Unlock()
}
