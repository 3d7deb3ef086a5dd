package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/monitor"

	"github.com/gorilla/websocket"
	"github.com/zeromicro/go-zero/core/logx"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	closeWriteWait          = time.Second
)

// StreamDialer opens <wsURL>/logs/<sessionId> on the orchestration backend.
type StreamDialer struct {
	wsURL  string
	dialer *websocket.Dialer
}

func NewStreamDialer(wsURL string, handshakeTimeout time.Duration) *StreamDialer {
	if handshakeTimeout <= 0 {
		handshakeTimeout = defaultHandshakeTimeout
	}
	return &StreamDialer{
		wsURL: strings.TrimRight(wsURL, "/"),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

func (d *StreamDialer) Dial(ctx context.Context, sessionID string) (monitor.Stream, error) {
	endpoint := d.wsURL + "/logs/" + url.PathEscape(sessionID)
	logx.Infof("connecting to logs websocket: %s", endpoint)

	conn, resp, err := d.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return nil, fmt.Errorf("dial %s: %w (status %s: %s)", endpoint, err, resp.Status, body)
		}
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	return &LogStream{conn: conn, sessionID: sessionID}, nil
}

// LogStream is the realtime log connection of one session.
type LogStream struct {
	conn      *websocket.Conn
	sessionID string

	writeMu   sync.Mutex
	closing   atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Run reads frames until the connection ends. Each text frame is decoded
// once here; malformed frames are logged and skipped. A close frame from the
// backend reports Closed, any other read failure reports Failed, and a
// connection closed locally reports nothing.
func (s *LogStream) Run(sink monitor.StreamSink) {
	defer s.Close()

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.closing.Load() {
				return
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				logx.Infof("logs websocket for session %s closed: %d %s", s.sessionID, closeErr.Code, closeErr.Text)
				sink.Closed()
				return
			}
			sink.Failed(fmt.Errorf("read logs websocket: %w", err))
			return
		}

		if messageType != websocket.TextMessage {
			logx.Debugf("skipping non-text frame on session %s", s.sessionID)
			continue
		}

		ev, err := monitor.DecodeEvent(data)
		if err != nil {
			logx.Errorf("skipping logs event on session %s: %v", s.sessionID, err)
			continue
		}
		sink.Event(ev)
	}
}

// Send writes one JSON message. Writes are serialized.
func (s *LogStream) Send(v any) error {
	if s.closing.Load() {
		return monitor.ErrStreamNotOpen
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// Close sends a normal closure and drops the connection. It is idempotent.
func (s *LogStream) Close() error {
	s.closeOnce.Do(func() {
		s.closing.Store(true)

		s.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteWait))
		s.writeMu.Unlock()

		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
