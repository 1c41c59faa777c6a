package apiclient

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/authdoc/go-authdoc-client/token"
)

// Interceptor is a pipeline stage applied uniformly to every outbound
// request or inbound response.
type Interceptor func(http.RoundTripper) http.RoundTripper

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// ChainInterceptors layers interceptors over base. The first interceptor is
// the outermost: its request hook runs first and its response hook last.
func ChainInterceptors(base http.RoundTripper, interceptors ...Interceptor) http.RoundTripper {
	chained := base
	// Apply interceptors in reverse order
	for i := len(interceptors) - 1; i >= 0; i-- {
		chained = interceptors[i](chained)
	}
	return chained
}

// RequestIDInterceptor stamps every request with a correlation ID and traces
// it at debug level.
func RequestIDInterceptor(log zerolog.Logger) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			req = req.Clone(req.Context())
			requestID := uuid.New().String()
			req.Header.Set("X-Request-ID", requestID)

			log.Debug().
				Str("request_id", requestID).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Msg("outbound request")

			return next.RoundTrip(req)
		})
	}
}

// AcceptJSONInterceptor sets the default content negotiation header.
func AcceptJSONInterceptor() Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			req = req.Clone(req.Context())
			if req.Header.Get("Accept") == "" {
				req.Header.Set("Accept", "application/json")
			}
			return next.RoundTrip(req)
		})
	}
}

// BearerInterceptor attaches the stored access token, when present, as a
// bearer credential. The request body and URL are never touched.
func BearerInterceptor(tokens token.Repo) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if access := tokens.Access(); access != "" {
				req = req.Clone(req.Context())
				req.Header.Set("Authorization", "Bearer "+access)
			}
			return next.RoundTrip(req)
		})
	}
}

// UnauthorizedWatcher enforces the global expiry policy: any HTTP 401 from
// any endpoint clears the token store and notifies onInvalidated, exactly
// once per failing call, before the response is handed back to the caller.
// Transport failures with no response pass through untouched.
func UnauthorizedWatcher(tokens token.Repo, onInvalidated func(), log zerolog.Logger) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil || resp == nil {
				return resp, err
			}

			if resp.StatusCode == http.StatusUnauthorized {
				log.Warn().
					Str("method", req.Method).
					Str("path", req.URL.Path).
					Msg("unauthorized response, clearing credentials")

				if clearErr := tokens.Clear(); clearErr != nil {
					log.Error().Err(clearErr).Msg("failed to clear credentials")
				}
				if onInvalidated != nil {
					onInvalidated()
				}
			}

			return resp, nil
		})
	}
}
