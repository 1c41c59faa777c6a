package config

import (
	"os"
	"strconv"
	"time"
)

const (
	apiURLVar  = "AUTHDOC_API_URL"
	timeoutVar = "AUTHDOC_TIMEOUT_SECONDS"

	// Service URLs for the two deployment shapes: container-networked
	// (service names resolve inside the compose network) and local
	// development against a backend on localhost.
	containerBaseURL = "http://backend:8000/api"
	localBaseURL     = "http://localhost:8000/api"

	defaultRequestTimeout = 60 * time.Second
)

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the backend base URL. An explicit AUTHDOC_API_URL
// wins; otherwise the URL is picked by a deployment-environment heuristic,
// so no build-time flag is needed.
func (API) GetAPIBaseURL() string {
	if url := os.Getenv(apiURLVar); url != "" {
		return url
	}
	return ResolveBaseURL(InContainer())
}

func (API) GetRequestTimeout() time.Duration {
	if v := os.Getenv(timeoutVar); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultRequestTimeout
}

func (API) GetLoginPath() string {
	return "/login"
}

// ResolveBaseURL maps the deployment environment to a base URL. Inside a
// container the backend is reachable by its service name, not loopback.
func ResolveBaseURL(inContainer bool) string {
	if inContainer {
		return containerBaseURL
	}
	return localBaseURL
}

// InContainer reports whether the process is running inside a container.
func InContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if _, err := os.Stat("/run/.containerenv"); err == nil {
		return true
	}
	return false
}
