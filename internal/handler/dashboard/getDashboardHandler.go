package dashboard

import (
	"net/http"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/logic/dashboard"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/svc"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/types"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func GetDashboardHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.DashboardRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := dashboard.NewGetDashboardLogic(r.Context(), svcCtx)
		resp, err := l.GetDashboard(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
