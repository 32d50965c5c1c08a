package constants

import "time"

const (
	RequestTimeout = 30 * time.Second
)

const (
	MaxConnsPerHost     = 16
	MaxIdleConnDuration = 1 * time.Minute
	MaxResponseBodySize = 8 << 20
)

const (
	DefaultRateLimit      = 500
	DefaultRateLimitReset = 600
)

const (
	ViewIDLength = 12
)

const (
	SparklineWidth = 40
)
