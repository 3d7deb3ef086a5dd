package dashboard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/logic/dashboard"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/svc"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/types"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func UpdateSessionHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// session은 자유 형식 객체라서 그대로 디코딩
		var req types.UpdateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			httpx.WriteJsonCtx(r.Context(), w, http.StatusBadRequest, types.UpdateSessionResponse{
				Error: "Invalid request body: " + err.Error(),
			})
			return
		}

		l := dashboard.NewUpdateSessionLogic(r.Context(), svcCtx)
		resp, err := l.UpdateSession(&req)
		if err != nil {
			var callErr *types.CallError
			if errors.As(err, &callErr) {
				httpx.WriteJsonCtx(r.Context(), w, callErr.Code, types.UpdateSessionResponse{Error: callErr.Message})
				return
			}
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}
