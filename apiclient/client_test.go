package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/authdoc/go-authdoc-client/apiclient"
	clienterrors "github.com/authdoc/go-authdoc-client/internal/errors"
	"github.com/authdoc/go-authdoc-client/token"
	"github.com/authdoc/go-authdoc-client/token/repofake"
	"github.com/authdoc/go-authdoc-client/verification"
)

type testConfig struct {
	baseURL string
}

func (c testConfig) GetAPIBaseURL() string            { return c.baseURL }
func (c testConfig) GetRequestTimeout() time.Duration { return 5 * time.Second }
func (c testConfig) GetLoginPath() string             { return "/login" }

// testFixture holds all test dependencies
type testFixture struct {
	server        *httptest.Server
	tokens        *repofake.FakeTokenRepo
	client        *apiclient.Client
	invalidations atomic.Int32
}

func setupTestFixture(t *testing.T, handler http.HandlerFunc) *testFixture {
	t.Helper()

	f := &testFixture{
		server: httptest.NewServer(handler),
		tokens: repofake.NewFakeTokenRepo(),
	}
	t.Cleanup(f.server.Close)

	client, err := apiclient.New(testConfig{baseURL: f.server.URL}, f.tokens)
	require.NoError(t, err)
	client.OnSessionInvalidated(func() {
		f.invalidations.Add(1)
	})

	f.client = client
	return f
}

func TestBearerAttachedWhenTokenPresent(t *testing.T) {
	var gotAuth, gotAccept, gotRequestID string

	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(map[string]any{"id": 1})
	})

	require.NoError(t, f.tokens.Save(token.Credentials{Access: "A"}))

	_, err := f.client.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer A", gotAuth)
	require.Equal(t, "application/json", gotAccept)
	require.NotEmpty(t, gotRequestID)
}

func TestNoBearerWhenStoreEmpty(t *testing.T) {
	var gotAuth string

	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"id": 1})
	})

	_, err := f.client.Me(context.Background())
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestUnauthorizedClearsStoreAndNotifies(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Token is expired"})
	})

	require.NoError(t, f.tokens.Save(token.Credentials{Access: "A", Refresh: "R"}))

	_, err := f.client.Me(context.Background())
	require.Error(t, err)

	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	require.True(t, apiErr.Unauthorized())
	require.Equal(t, "Token is expired", apiErr.Detail)

	// Global policy: store emptied, hook fired exactly once per failing call.
	require.Empty(t, f.tokens.Access())
	require.Empty(t, f.tokens.Refresh())
	require.Equal(t, int32(1), f.invalidations.Load())
}

func TestUnauthorizedNotifiesPerFailingCall(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, _ = f.client.Me(context.Background())
	_, _ = f.client.Me(context.Background())
	require.Equal(t, int32(2), f.invalidations.Load())
}

func TestNetworkFailurePropagatesUntouched(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	f.server.Close()

	require.NoError(t, f.tokens.Save(token.Credentials{Access: "A"}))

	_, err := f.client.Me(context.Background())
	require.Error(t, err)

	var apiErr *apiclient.Error
	require.False(t, clienterrors.As(err, &apiErr))

	// No response received: credentials stay, no invalidation.
	require.Equal(t, "A", f.tokens.Access())
	require.Equal(t, int32(0), f.invalidations.Load())
}

func TestOtherFailuresPassThrough(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"detail": "boom"})
	})

	require.NoError(t, f.tokens.Save(token.Credentials{Access: "A"}))

	_, err := f.client.Me(context.Background())
	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	require.Equal(t, "A", f.tokens.Access())
	require.Equal(t, int32(0), f.invalidations.Load())
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login/", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "jane", body["username"])
		require.Equal(t, "secret", body["password"])

		json.NewEncoder(w).Encode(map[string]any{
			"access":  "A",
			"refresh": "R",
			"user":    map[string]any{"id": 1, "username": "jane"},
		})
	})

	resp, err := f.client.Login(context.Background(), "jane", "secret")
	require.NoError(t, err)
	require.Equal(t, "A", resp.Access)
	require.Equal(t, "R", resp.Refresh)
	require.Equal(t, int64(1), resp.User.ID)
}

func TestRegisterWantsCreated(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register/", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, body["password"], body["password2"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"user":   map[string]any{"id": 2, "username": body["username"]},
			"tokens": map[string]string{"access": "A", "refresh": "R"},
		})
	})

	resp, err := f.client.Register(context.Background(), apiclient.RegisterRequest{
		Username:  "jane",
		Email:     "jane@x.com",
		Password:  "secret1",
		Password2: "secret1",
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), resp.User.ID)
	require.Equal(t, "A", resp.Tokens.Access)
}

func TestRefreshAccess(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token/refresh/", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "R", body["refresh"])

		json.NewEncoder(w).Encode(map[string]string{"access": "A2"})
	})

	access, err := f.client.RefreshAccess(context.Background(), "R")
	require.NoError(t, err)
	require.Equal(t, "A2", access)
}

func TestRevokeRefreshWantsResetContent(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/logout/", r.URL.Path)
		w.WriteHeader(http.StatusResetContent)
	})

	require.NoError(t, f.client.RevokeRefresh(context.Background(), "R"))
}

func TestErrorDecodingShapes(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantDetail string
		wantField  string
		wantMsg    string
	}{
		{
			name:       "detail message",
			body:       `{"detail":"Invalid credentials"}`,
			wantDetail: "Invalid credentials",
		},
		{
			name:       "error message",
			body:       `{"error":"Aadhaar number and document are required."}`,
			wantDetail: "Aadhaar number and document are required.",
		},
		{
			name:      "field error list",
			body:      `{"password":["This password is too short."]}`,
			wantField: "This password is too short.",
		},
		{
			name:      "field error string",
			body:      `{"password":"Passwords do not match."}`,
			wantField: "Passwords do not match.",
		},
		{
			name:    "unparseable body",
			body:    `<html>gateway error</html>`,
			wantMsg: "fallback",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tc.body))
			})

			_, err := f.client.Me(context.Background())
			var apiErr *apiclient.Error
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tc.wantDetail, apiErr.Detail)
			require.Equal(t, tc.wantField, apiErr.FieldMessage("password"))
			if tc.wantMsg != "" {
				require.Equal(t, tc.wantMsg, apiErr.Message("fallback"))
			}
		})
	}
}

func TestErrorMessagePriority(t *testing.T) {
	apiErr := &apiclient.Error{
		StatusCode: http.StatusBadRequest,
		Detail:     "general detail",
		Fields: map[string][]string{
			"password": {"password problem"},
			"email":    {"email problem"},
		},
	}

	require.Equal(t, "password problem", apiErr.Message("fallback", "password", "email"))
	require.Equal(t, "email problem", apiErr.Message("fallback", "email"))
	require.Equal(t, "general detail", apiErr.Message("fallback", "missing_field"))
	require.Equal(t, "general detail", apiErr.Message("fallback"))

	apiErr.Detail = ""
	apiErr.Fields = nil
	require.Equal(t, "fallback", apiErr.Message("fallback", "password", "email"))
}

func TestVerifyDocumentMultipart(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify/aadhaar/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		require.Equal(t, "234123412346", r.FormValue("aadhaar_number"))

		document, header, err := r.FormFile("document")
		require.NoError(t, err)
		defer document.Close()
		require.Equal(t, "card.jpg", header.Filename)

		template, _, err := r.FormFile("template")
		require.NoError(t, err)
		defer template.Close()

		json.NewEncoder(w).Encode(map[string]any{
			"aadhaar_number": "234123412346",
			"scores": map[string]float64{
				"verhoeff": 100, "layout": 92, "text": 95,
				"copy_move": 88, "metadata": 90, "ela": 86,
			},
			"final_score":    91.6,
			"classification": verification.ClassificationAuthentic,
			"status":         "Completed",
		})
	})

	result, err := f.client.VerifyDocument(context.Background(), verification.Request{
		AadhaarNumber: "234123412346",
		Document:      strings.NewReader("fake image bytes"),
		DocumentName:  "card.jpg",
		Template:      strings.NewReader("fake template bytes"),
		TemplateName:  "template.jpg",
	})
	require.NoError(t, err)
	require.Equal(t, float64(100), result.Scores.Verhoeff)
	require.Equal(t, 91.6, result.FinalScore)
	require.Equal(t, verification.ClassificationAuthentic, result.Classification)
}

func TestVerifyDocumentValidatesBeforeNetwork(t *testing.T) {
	var requests atomic.Int32
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	})

	_, err := f.client.VerifyDocument(context.Background(), verification.Request{
		AadhaarNumber: "123",
		Document:      strings.NewReader("x"),
	})
	require.ErrorIs(t, err, clienterrors.ErrValidation)

	_, err = f.client.VerifyDocument(context.Background(), verification.Request{
		AadhaarNumber: "234123412346",
	})
	require.ErrorIs(t, err, clienterrors.ErrValidation)

	require.Equal(t, int32(0), requests.Load())
}

func TestVerificationResult(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify/results/7/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":             7,
			"aadhaar_number": "234123412346",
			"final_score":    91.6,
			"result":         verification.ClassificationAuthentic,
			"status":         "Completed",
		})
	})

	record, err := f.client.VerificationResult(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), record.ID)
	require.NotNil(t, record.FinalScore)
	require.Equal(t, 91.6, *record.FinalScore)
}
