package svc

import (
	"context"
	"os"
	"time"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/config"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/backend"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/monitor"
)

const (
	defaultBackendURL   = "http://localhost:3000"
	defaultBackendWSURL = "ws://localhost:3000"
)

// CallStarter places calls through the orchestration backend.
type CallStarter interface {
	StartCall(ctx context.Context, req backend.StartCallRequest) (*backend.StartCallResult, error)
}

type ServiceContext struct {
	Config    config.Config
	Calls     CallStarter
	Dashboard *monitor.Dashboard
}

func NewServiceContext(c config.Config) *ServiceContext {
	// 백엔드 주소: 설정 파일 > 환경 변수 > 기본값
	backendURL := c.Backend.URL
	if backendURL == "" {
		backendURL = os.Getenv("BACKEND_URL")
	}
	if backendURL == "" {
		backendURL = defaultBackendURL
	}

	backendWSURL := c.Backend.WSURL
	if backendWSURL == "" {
		backendWSURL = os.Getenv("BACKEND_WS_URL")
	}
	if backendWSURL == "" {
		backendWSURL = defaultBackendWSURL
	}

	if c.Dashboard.DefaultPrompt == "" {
		c.Dashboard.DefaultPrompt = config.DefaultPrompt
	}
	c.Backend.URL = backendURL
	c.Backend.WSURL = backendWSURL

	calls := backend.NewCallClient(backendURL, time.Duration(c.Backend.RequestTimeout)*time.Millisecond)
	dialer := backend.NewStreamDialer(backendWSURL, time.Duration(c.Backend.HandshakeTimeout)*time.Millisecond)

	return &ServiceContext{
		Config:    c,
		Calls:     calls,
		Dashboard: monitor.NewDashboard(dialer),
	}
}

// Close releases the realtime stream of the monitored call.
func (s *ServiceContext) Close() {
	s.Dashboard.Close()
}
