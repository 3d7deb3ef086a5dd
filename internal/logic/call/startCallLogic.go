package call

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/svc"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/types"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/backend"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/monitor"

	"github.com/zeromicro/go-zero/core/logx"
)

type StartCallLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewStartCallLogic(ctx context.Context, svcCtx *svc.ServiceContext) *StartCallLogic {
	return &StartCallLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// StartCall proxies the request to the backend and, once the backend has
// created a session, switches the dashboard over to it. The backend body is
// returned verbatim.
func (l *StartCallLogic) StartCall(req *types.StartCallRequest) (json.RawMessage, error) {
	callReq := backend.StartCallRequest{
		ElderID:     req.ElderID,
		PhoneNumber: req.PhoneNumber,
		Prompt:      req.Prompt,
	}
	// 필수 파라미터 검증
	if err := callReq.Validate(); err != nil {
		return nil, &types.CallError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	result, err := l.svcCtx.Calls.StartCall(l.ctx, callReq)
	if err != nil {
		var rejected *backend.RejectedError
		if errors.As(err, &rejected) {
			return nil, &types.CallError{Code: rejected.Status, Message: rejected.Message}
		}
		l.Errorf("Call API error: %v", err)
		return nil, &types.CallError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	}

	err = l.svcCtx.Dashboard.StartCall(monitor.CallMeta{
		SessionID:   result.SessionID,
		CallSid:     result.CallSid,
		ElderID:     req.ElderID,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		l.Errorf("start monitoring session %s: %v", result.SessionID, err)
		return nil, &types.CallError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	}

	l.Infof("call started for elder %s: session=%s callSid=%s", req.ElderID, result.SessionID, result.CallSid)
	return result.Raw, nil
}
