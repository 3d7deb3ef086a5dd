package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/svc"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/monitor"

	"github.com/gorilla/websocket"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"
)

const (
	MessageTypeSnapshot      = "snapshot"
	MessageTypeSearch        = "search"
	MessageTypeSessionUpdate = monitor.EventSessionUpdate
	MessageTypeError         = "error"

	writeWait = 10 * time.Second
)

type DashboardStreamLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
	// 연결당 하나의 쓰기 잠금
	wsWriteMutex sync.Mutex
	queryMutex   sync.Mutex
	query        string
}

func NewDashboardStreamLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DashboardStreamLogic {
	return &DashboardStreamLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// WebSocket 메시지 구조
type WSMessage struct {
	Type      string          `json:"type"`
	Content   any             `json:"content,omitempty"`
	Session   json.RawMessage `json:"session,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

type SearchMessage struct {
	Query string `json:"query"`
}

type ErrorMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// HandleWebSocket pushes a fresh dashboard snapshot after every change until
// the browser goes away. The browser may send "search" to filter the
// transcript, or "session.update" to reconfigure the live session.
func (l *DashboardStreamLogic) HandleWebSocket(conn *websocket.Conn) {
	defer conn.Close()

	changes, unsubscribe := l.svcCtx.Dashboard.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	threading.GoSafe(func() {
		defer close(done)
		l.readLoop(conn)
	})

	if !l.sendSnapshot(conn) {
		return
	}

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-done:
			return
		case _, ok := <-changes:
			if !ok {
				l.closeGracefully(conn)
				return
			}
			if !l.sendSnapshot(conn) {
				return
			}
		}
	}
}

func (l *DashboardStreamLogic) readLoop(conn *websocket.Conn) {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				l.Errorf("dashboard websocket error: %v", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			l.sendError(conn, 400, "Unsupported message type")
			continue
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			l.sendError(conn, 400, "Invalid JSON message: "+err.Error())
			continue
		}

		switch msg.Type {
		case MessageTypeSearch:
			l.handleSearch(conn, &msg)
		case MessageTypeSessionUpdate:
			l.handleSessionUpdate(conn, &msg)
		default:
			l.sendError(conn, 400, "Unknown message type: "+msg.Type)
		}
	}
}

func (l *DashboardStreamLogic) handleSearch(conn *websocket.Conn, msg *WSMessage) {
	var search SearchMessage
	if raw, err := json.Marshal(msg.Content); err == nil {
		_ = json.Unmarshal(raw, &search)
	}

	l.queryMutex.Lock()
	l.query = search.Query
	l.queryMutex.Unlock()

	l.sendSnapshot(conn)
}

func (l *DashboardStreamLogic) handleSessionUpdate(conn *websocket.Conn, msg *WSMessage) {
	config := map[string]any{}
	if len(msg.Session) > 0 {
		if err := json.Unmarshal(msg.Session, &config); err != nil {
			l.sendError(conn, 400, "Invalid session config: "+err.Error())
			return
		}
	}

	if err := l.svcCtx.Dashboard.UpdateSession(config); err != nil {
		code := 502
		if errors.Is(err, monitor.ErrStreamNotOpen) {
			code = 409
		}
		l.sendError(conn, code, err.Error())
	}
}

func (l *DashboardStreamLogic) sendSnapshot(conn *websocket.Conn) bool {
	l.queryMutex.Lock()
	query := l.query
	l.queryMutex.Unlock()

	return l.sendMessage(conn, &WSMessage{
		Type:      MessageTypeSnapshot,
		Content:   l.svcCtx.Dashboard.Snapshot(query),
		Timestamp: time.Now().Unix(),
	})
}

func (l *DashboardStreamLogic) sendMessage(conn *websocket.Conn, msg *WSMessage) bool {
	l.wsWriteMutex.Lock()
	defer l.wsWriteMutex.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		l.Errorf("Failed to send WebSocket message: %v", err)
		return false
	}
	return true
}

func (l *DashboardStreamLogic) sendError(conn *websocket.Conn, code int, message string) {
	l.sendMessage(conn, &WSMessage{
		Type: MessageTypeError,
		Content: ErrorMessage{
			Code:    code,
			Message: message,
		},
		Timestamp: time.Now().Unix(),
	})
}

func (l *DashboardStreamLogic) closeGracefully(conn *websocket.Conn) {
	l.wsWriteMutex.Lock()
	defer l.wsWriteMutex.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "dashboard closed")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
