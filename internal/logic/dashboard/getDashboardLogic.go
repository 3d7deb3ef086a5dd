package dashboard

import (
	"context"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/svc"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type GetDashboardLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetDashboardLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetDashboardLogic {
	return &GetDashboardLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetDashboardLogic) GetDashboard(req *types.DashboardRequest) (*types.DashboardResponse, error) {
	return &types.DashboardResponse{
		DashboardSnapshot: l.svcCtx.Dashboard.Snapshot(req.Query),
		// 통화 시작 폼의 기본 프롬프트
		DefaultPrompt: l.svcCtx.Config.Dashboard.DefaultPrompt,
	}, nil
}
