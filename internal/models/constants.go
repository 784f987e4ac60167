package models

const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

const (
	// DateLayout is how reservation dates are stored and exchanged.
	DateLayout = "2006-01-02"

	// LocationCacheTTL время жизни кэша списка площадок в Redis (секунды)
	LocationCacheTTL = 5 * 60

	// NotifyQueueSize размер внутренней очереди воркера уведомлений
	NotifyQueueSize = 128

	// RateLimitRPS / RateLimitBurst значения по умолчанию для HTTP API
	RateLimitRPS   = 10
	RateLimitBurst = 20
)
