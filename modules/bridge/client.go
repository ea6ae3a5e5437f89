package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/geoview/internal/mapengine"
)

// Event names of the wire protocol.
const (
	EventCall           = "engine:call"
	EventResult         = "engine:result"
	EventNotify         = "engine:event"
	EventCallbackResult = "engine:callback_result"
)

// Remote error codes with a local meaning.
const (
	CodeUnknownBasemap = "unknown_basemap"
	CodeInvalidOption  = "invalid_option"
	CodeNotFound       = "not_found"
)

// ErrClosed is returned by calls on a closed client.
var ErrClosed = errors.New("bridge client closed")

// ErrInvalidOption is the local form of the invalid_option remote code.
var ErrInvalidOption = errors.New("invalid widget option")

// Transport carries protocol events. Payloads are JSON-shaped maps.
type Transport interface {
	Emit(event string, payload map[string]any)
	On(event string, fn func(payload map[string]any))
	Close()
}

// RemoteError is an error reported by the remote engine.
type RemoteError struct {
	Method  string
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s failed: %s (%s)", e.Method, e.Message, e.Code)
}

// Unwrap maps known codes onto sentinel errors.
func (e *RemoteError) Unwrap() error {
	switch e.Code {
	case CodeUnknownBasemap:
		return mapengine.ErrUnknownBasemap
	case CodeInvalidOption:
		return ErrInvalidOption
	}
	return nil
}

// Client is the request/response layer over a Transport.
type Client struct {
	t       Transport
	timeout time.Duration

	mu        sync.Mutex
	pending   map[string]chan map[string]any
	callbacks map[string]func(args map[string]any) error
	closed    bool
}

// NewClient wraps t. Calls that do not wait on the remote UI give up after
// timeout; zero disables the limit.
func NewClient(t Transport, timeout time.Duration) *Client {
	c := &Client{
		t:         t,
		timeout:   timeout,
		pending:   make(map[string]chan map[string]any),
		callbacks: make(map[string]func(map[string]any) error),
	}
	t.On(EventResult, c.onResult)
	t.On(EventNotify, c.onNotify)
	return c
}

// Call sends a request and waits for its result, bounded by the client
// timeout.
func (c *Client) Call(ctx context.Context, method string, params map[string]any) (map[string]any, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.Await(ctx, method, params)
}

// Await is Call without the client timeout, for requests that wait on the
// remote UI such as view readiness.
func (c *Client) Await(ctx context.Context, method string, params map[string]any) (map[string]any, error) {
	id := uuid.NewString()
	ch := make(chan map[string]any, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	c.t.Emit(EventCall, map[string]any{"id": id, "method": method, "params": params})

	select {
	case res, ok := <-ch:
		if !ok {
			return nil, ErrClosed
		}
		if e, isErr := res["error"].(map[string]any); isErr {
			code, _ := e["code"].(string)
			msg, _ := e["message"].(string)
			return nil, &RemoteError{Method: method, Code: code, Message: msg}
		}
		result, _ := res["result"].(map[string]any)
		if result == nil {
			result = map[string]any{}
		}
		return result, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("remote %s: %w", method, ctx.Err())
	}
}

func (c *Client) onResult(p map[string]any) {
	id, _ := p["id"].(string)
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.pending[id]
	if !ok {
		return
	}
	select {
	case ch <- p:
	default:
	}
}

// RegisterCallback makes fn invocable by the remote and returns its wire
// form.
func (c *Client) RegisterCallback(fn func(args map[string]any) error) map[string]any {
	id := uuid.NewString()
	c.mu.Lock()
	c.callbacks[id] = fn
	c.mu.Unlock()
	return map[string]any{"$callback": id}
}

// UnregisterCallbacks forgets callbacks by wire ID. Later invocations get an
// unknown callback reply.
func (c *Client) UnregisterCallbacks(ids ...string) {
	c.mu.Lock()
	for _, id := range ids {
		delete(c.callbacks, id)
	}
	c.mu.Unlock()
}

// Callbacks returns the number of registered callbacks.
func (c *Client) Callbacks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.callbacks)
}

func (c *Client) onNotify(p map[string]any) {
	if kind, _ := p["type"].(string); kind != "callback" {
		return
	}
	cbID, _ := p["callback"].(string)
	invocation, _ := p["id"].(string)
	args, _ := p["args"].(map[string]any)

	c.mu.Lock()
	fn, ok := c.callbacks[cbID]
	c.mu.Unlock()

	go func() {
		reply := map[string]any{"id": invocation}
		var err error
		if !ok {
			err = fmt.Errorf("unknown callback %q", cbID)
		} else {
			err = fn(args)
		}
		if err != nil {
			reply["error"] = err.Error()
		}
		c.t.Emit(EventCallbackResult, reply)
	}()
}

// Close fails pending calls and closes the transport. It is safe to call more
// than once.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.mu.Unlock()
	c.t.Close()
}
