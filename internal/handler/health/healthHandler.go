package health

import (
	"net/http"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/logic/health"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/svc"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func HealthHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := health.NewHealthLogic(r.Context(), svcCtx)
		resp, err := l.Health()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
