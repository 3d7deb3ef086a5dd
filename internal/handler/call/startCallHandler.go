package call

import (
	"errors"
	"net/http"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/logic/call"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/svc"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func StartCallHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 본문은 Content-Type과 관계없이 JSON으로 읽는다
		if r.Header.Get("Content-Type") == "" {
			r.Header.Set("Content-Type", "application/json")
		}

		var req types.StartCallRequest
		if err := httpx.Parse(r, &req); err != nil {
			logx.WithContext(r.Context()).Errorf("Call API error: parse request: %v", err)
			httpx.WriteJsonCtx(r.Context(), w, http.StatusInternalServerError, types.StartCallResponse{
				Error: "Internal server error",
			})
			return
		}

		l := call.NewStartCallLogic(r.Context(), svcCtx)
		body, err := l.StartCall(&req)
		if err != nil {
			writeCallError(w, r, err)
			return
		}

		// 백엔드 응답을 그대로 전달
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			logx.WithContext(r.Context()).Errorf("write call response: %v", err)
		}
	}
}

func writeCallError(w http.ResponseWriter, r *http.Request, err error) {
	var callErr *types.CallError
	if errors.As(err, &callErr) {
		httpx.WriteJsonCtx(r.Context(), w, callErr.Code, types.StartCallResponse{Error: callErr.Message})
		return
	}
	httpx.ErrorCtx(r.Context(), w, err)
}
