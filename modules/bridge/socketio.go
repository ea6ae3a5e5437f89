package bridge

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DialOptions configure the socket.io connection to the remote engine.
type DialOptions struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	// ConnectTimeout defaults to 15s.
	ConnectTimeout time.Duration
}

// SocketTransport is a Transport over a socket.io client socket.
type SocketTransport struct {
	io *socket.Socket
}

// Dial connects to the remote engine and waits for the connection.
func Dial(ctx context.Context, opts DialOptions) (*SocketTransport, error) {
	logger := ctxlog.FromContext(ctx).With("engine", "bridge", "url", opts.URL)
	logger.Info("Connecting to remote engine...")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	sopts := socket.DefaultOptions()
	sopts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sopts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sopts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sopts)
	io := manager.Socket(opts.Namespace, sopts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to remote engine", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketTransport{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Emit implements Transport.
func (t *SocketTransport) Emit(event string, payload map[string]any) {
	t.io.Emit(event, payload)
}

// On implements Transport. Events without a JSON object payload are dropped.
func (t *SocketTransport) On(event string, fn func(map[string]any)) {
	t.io.On(types.EventName(event), func(args ...any) {
		if len(args) == 0 {
			return
		}
		if p, ok := args[0].(map[string]any); ok {
			fn(p)
		}
	})
}

// Connected reports whether the socket is connected.
func (t *SocketTransport) Connected() bool {
	return t.io.Connected()
}

// Close implements Transport.
func (t *SocketTransport) Close() {
	t.io.Disconnect()
}
