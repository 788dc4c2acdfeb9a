package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcrodman/termcred/internal/core"
	"github.com/dcrodman/termcred/internal/core/auth"
	"github.com/dcrodman/termcred/internal/core/data"
)

type fakeAuthenticator struct {
	account *data.Account
	err     error
	got     auth.LoginRequest
}

func (f *fakeAuthenticator) Verify(_ context.Context, req auth.LoginRequest) (*data.Account, error) {
	f.got = req
	return f.account, f.err
}

func newTestServer(authenticator Authenticator) http.Handler {
	logger, _ := logtest.NewNullLogger()
	return New(core.DefaultConfig(), authenticator, logger).Handler()
}

const validBody = `{"userId":"UserId","encPassword":"JdidvOxahyWS5knbDUxI8g==","clientTime":"2021-01-28T11:53:17Z","terminalId":"T-1"}`

func Test_handleTerminalLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		account    *data.Account
		err        error
		wantStatus int
		wantError  string
	}{
		{"accepted", validBody, &data.Account{Username: "UserId"}, nil, http.StatusOK, ""},
		{"invalid credentials", validBody, nil, auth.ErrInvalidCredentials, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error()},
		{"clock skew", validBody, nil, auth.ErrClockSkew, http.StatusUnauthorized, auth.ErrClockSkew.Error()},
		{"replayed", validBody, nil, auth.ErrReplayed, http.StatusUnauthorized, auth.ErrReplayed.Error()},
		{"unknown terminal", validBody, nil, auth.ErrUnknownTerminal, http.StatusUnauthorized, auth.ErrUnknownTerminal.Error()},
		{"banned", validBody, nil, auth.ErrAccountBanned, http.StatusForbidden, auth.ErrAccountBanned.Error()},
		{"internal errors are hidden", validBody, nil, errors.New("db on fire"), http.StatusInternalServerError, auth.ErrUnknown.Error()},
		{"malformed json", `{"userId":`, nil, nil, http.StatusBadRequest, ""},
		{"bad time", `{"userId":"a","encPassword":"b","clientTime":"yesterday","terminalId":"c"}`, nil, nil, http.StatusBadRequest, ""},
		{"missing fields", `{"userId":"UserId"}`, nil, nil, http.StatusBadRequest, ""},
		{"mac is ignored", `{"userId":"UserId","encPassword":"JdidvOxahyWS5knbDUxI8g==","clientTime":"2021-01-28T11:53:17Z","terminalId":"T-1","mac":"3F2A"}`, &data.Account{Username: "UserId"}, nil, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authenticator := &fakeAuthenticator{account: tt.account, err: tt.err}
			handler := newTestServer(authenticator)

			req := httptest.NewRequest(http.MethodPost, "/v1/auth/terminal", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp loginResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "UserId", resp.Username)
				assert.Equal(t, "T-1", authenticator.got.TerminalID)
				assert.True(t, authenticator.got.ClientTime.Equal(time.Date(2021, 1, 28, 11, 53, 17, 0, time.UTC)))
				return
			}
			assert.Empty(t, resp.Username)
			assert.NotEmpty(t, resp.Error)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp.Error)
			}
		})
	}
}

func Test_routes(t *testing.T) {
	handler := newTestServer(&fakeAuthenticator{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/auth/terminal", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEqual(t, http.StatusNotFound, rec.Code)
}

func TestServer_Start(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	cfg := core.DefaultConfig()
	cfg.Web.HTTPPort = 0
	srv := New(cfg, &fakeAuthenticator{}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down after cancellation")
	}

	// The access log pipe is released with the server.
	_, err := srv.accessLog.Write([]byte("late request\n"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
