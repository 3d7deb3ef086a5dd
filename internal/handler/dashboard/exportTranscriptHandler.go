package dashboard

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/logic/dashboard"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/svc"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func ExportTranscriptHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := dashboard.NewExportTranscriptLogic(r.Context(), svcCtx)
		resp, err := l.ExportTranscript()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		// 파일명에 한글이 들어가므로 RFC 5987 형식도 함께 보낸다
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s",
			resp.Filename, url.PathEscape(resp.Filename)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(resp.Content)); err != nil {
			logx.WithContext(r.Context()).Errorf("write transcript: %v", err)
		}
	}
}
