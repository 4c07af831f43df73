package config

import (
	"time"
)

const (
	requestTimeoutVar = "PORTAL_REQUEST_TIMEOUT"
	uploadTimeoutVar  = "PORTAL_UPLOAD_TIMEOUT"
)

type Timeouts struct{}

var _ TimeoutConfig = Timeouts{}

// GetRequestTimeout bounds ordinary JSON requests.
func (Timeouts) GetRequestTimeout() time.Duration {
	return getDuration(requestTimeoutVar, 30*time.Second)
}

// GetUploadTimeout bounds multipart file uploads, which can carry
// large payloads and need more headroom than JSON calls.
func (Timeouts) GetUploadTimeout() time.Duration {
	return getDuration(uploadTimeoutVar, 2*time.Minute)
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
