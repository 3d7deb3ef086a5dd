package dashboard

import (
	"context"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/svc"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type ExportTranscriptLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewExportTranscriptLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ExportTranscriptLogic {
	return &ExportTranscriptLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ExportTranscriptLogic) ExportTranscript() (*types.ExportResponse, error) {
	filename, content := l.svcCtx.Dashboard.Export()
	l.Infof("exporting transcript %s (%d bytes)", filename, len(content))

	return &types.ExportResponse{
		Filename: filename,
		Content:  content,
	}, nil
}
