package dashboard

import (
	"context"
	"errors"
	"net/http"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/svc"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/types"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/monitor"

	"github.com/zeromicro/go-zero/core/logx"
)

type UpdateSessionLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewUpdateSessionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UpdateSessionLogic {
	return &UpdateSessionLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// UpdateSession relays a session.update to the backend over the open stream.
func (l *UpdateSessionLogic) UpdateSession(req *types.UpdateSessionRequest) (*types.UpdateSessionResponse, error) {
	err := l.svcCtx.Dashboard.UpdateSession(req.Session)
	switch {
	case err == nil:
		l.Infof("sent session.update with %d keys", len(req.Session))
		return &types.UpdateSessionResponse{Success: true}, nil
	case errors.Is(err, monitor.ErrStreamNotOpen):
		return nil, &types.CallError{Code: http.StatusConflict, Message: err.Error()}
	default:
		l.Errorf("send session.update: %v", err)
		return nil, &types.CallError{Code: http.StatusBadGateway, Message: err.Error()}
	}
}
