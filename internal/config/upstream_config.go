package config

import "time"

type UpstreamConfig interface {
	GetAPIURL() string
	GetProgressWSURL() string
	GetRequestTimeout() time.Duration
}

type Upstream struct{}

var _ UpstreamConfig = Upstream{}

// GetAPIURL returns the base URL of the upstream Astrovia REST API
func (Upstream) GetAPIURL() string {
	return GetEnv("API_URL", "http://localhost:8080")
}

// GetProgressWSURL returns the base URL of the video processing backend's
// progress push channel (e.g. "wss://clips.astrovia.io")
func (Upstream) GetProgressWSURL() string {
	return GetEnv("PROGRESS_WS_URL", "ws://localhost:8090")
}

func (Upstream) GetRequestTimeout() time.Duration {
	return 15 * time.Second
}
