package dashboard

import (
	"net/http"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/logic/dashboard"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/svc"

	"github.com/gorilla/websocket"
	"github.com/zeromicro/go-zero/core/logx"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 대시보드는 로컬 운영 도구라서 모든 출처를 허용
		return true
	},
}

func DashboardStreamHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Errorf("WebSocket upgrade failed: %v", err)
			return
		}

		l := dashboard.NewDashboardStreamLogic(r.Context(), svcCtx)
		l.HandleWebSocket(conn)
	}
}
