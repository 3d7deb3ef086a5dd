package handler

import (
	"net/http"

	call "github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/handler/call"
	dashboard "github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/handler/dashboard"
	health "github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/handler/health"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/svc"

	"github.com/zeromicro/go-zero/rest"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/call",
				Handler: call.StartCallHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api"),
	)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/dashboard",
				Handler: dashboard.GetDashboardHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/dashboard/export",
				Handler: dashboard.ExportTranscriptHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/dashboard/session",
				Handler: dashboard.UpdateSessionHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api"),
	)

	// 웹소켓 연결은 요청 타임아웃을 적용하지 않는다
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/dashboard/stream",
				Handler: dashboard.DashboardStreamHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api"),
		rest.WithTimeout(0),
	)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/health",
				Handler: health.HealthHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api"),
	)
}
