package config

import "time"

// Application constants
const (
	AppName = "경제활동인구 대시보드"

	// Source table defaults
	DefaultDataFile        = "경제활동_통합.csv"
	DefaultAggregateRegion = "계"

	DefaultYearColumn       = "년도"
	DefaultRegionColumn     = "지역"
	DefaultActiveColumn     = "경제활동인구 (천명)"
	DefaultEmployedColumn   = "취업자 (천명)"
	DefaultUnemployedColumn = "실업자 (천명)"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Watcher
	DefaultWatchDebounce = 500 * time.Millisecond

	// WebSocket
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second
)
