package config

import "github.com/zeromicro/go-zero/rest"

// DefaultPrompt opens the conversation when an operator does not write one.
const DefaultPrompt = "안녕하세요, 어르신. 저는 Medicare 건강 관리 도우미입니다. 오늘 컨디션은 어떠신지 여쭤보고 싶어서 연락드렸습니다."

type Config struct {
	rest.RestConf

	// 통화 오케스트레이션 백엔드
	Backend BackendConfig

	// 대시보드 기본값
	Dashboard DashboardConfig `json:",optional"`
}

type BackendConfig struct {
	URL              string `json:",optional"`      // BACKEND_URL
	WSURL            string `json:",optional"`      // BACKEND_WS_URL
	RequestTimeout   int64  `json:",default=30000"` // ms
	HandshakeTimeout int64  `json:",default=10000"` // ms
}

type DashboardConfig struct {
	DefaultPrompt string `json:",optional"`
}
