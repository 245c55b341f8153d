package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/roleshuffle/internal/assign"
	"github.com/fyrsmithlabs/roleshuffle/internal/blobstore/afsblob"
	"github.com/fyrsmithlabs/roleshuffle/internal/configstore"
	"github.com/fyrsmithlabs/roleshuffle/internal/logging"
	"github.com/fyrsmithlabs/roleshuffle/internal/reveal"
)

type testServer struct {
	*Server
	logger *logging.TestLogger
}

// setupTestServer creates a server over an in-memory store with a fast
// reveal schedule.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithReveal(t, reveal.Config{Ticks: 3, Interval: time.Millisecond})
}

func setupTestServerWithReveal(t *testing.T, rc reveal.Config) *testServer {
	t.Helper()
	ctx := context.Background()

	blobs, err := afsblob.Open(ctx, afsblob.MemoryScheme+uuid.NewString())
	require.NoError(t, err)
	store, err := configstore.Open(ctx, blobs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	engine := assign.New()
	controller, err := reveal.NewController(engine, rc)
	require.NoError(t, err)
	t.Cleanup(func() { controller.Stop() })

	logger := logging.NewTestLogger()
	server, err := NewServer(Services{Engine: engine, Reveal: controller, Store: store},
		logger.Logger, &Config{Host: "127.0.0.1", Port: 0, Version: "test"})
	require.NoError(t, err)

	return &testServer{Server: server, logger: logger}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNewServer(t *testing.T) {
	t.Run("returns error when services are missing", func(t *testing.T) {
		_, err := NewServer(Services{}, logging.NewNop(), nil)
		assert.Error(t, err)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		s := setupTestServer(t)
		_, err := NewServer(s.svc, nil, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		s := setupTestServer(t)
		server, err := NewServer(s.svc, logging.NewNop(), nil)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1", server.config.Host)
		assert.Equal(t, 8420, server.config.Port)
	})
}

func TestHandleHealth(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, "idle", resp.Reveal)
}

func TestHandleMetrics(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestHandleAssign(t *testing.T) {
	tests := []struct {
		name       string
		body       TeamRequest
		wantStatus int
		wantReason string
	}{
		{
			name:       "assigns every participant",
			body:       TeamRequest{Participants: []string{"Alice", "Bob", "Carol"}, Roles: []string{"Lead", "Dev"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "no participants",
			body:       TeamRequest{Roles: []string{"Lead"}},
			wantStatus: http.StatusBadRequest,
			wantReason: "empty_participants",
		},
		{
			name:       "no roles",
			body:       TeamRequest{Participants: []string{"Alice"}},
			wantStatus: http.StatusBadRequest,
			wantReason: "empty_roles",
		},
		{
			name:       "duplicate participant",
			body:       TeamRequest{Participants: []string{"Alice", "alice"}, Roles: []string{"Lead"}},
			wantStatus: http.StatusConflict,
			wantReason: "duplicate",
		},
		{
			name:       "blank role",
			body:       TeamRequest{Participants: []string{"Alice"}, Roles: []string{" "}},
			wantStatus: http.StatusBadRequest,
			wantReason: "empty_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(t)
			rec := s.do(t, http.MethodPost, "/api/v1/assign", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus != http.StatusOK {
				resp := decode[ErrorResponse](t, rec)
				assert.Equal(t, tt.wantReason, resp.Reason)
				assert.NotEmpty(t, resp.Error)
				return
			}

			resp := decode[AssignResponse](t, rec)
			assert.Equal(t, MessageAssigned, resp.Message)
			require.Len(t, resp.Participants, 3)
			counts := map[string]int{}
			for i, p := range resp.Participants {
				assert.Equal(t, tt.body.Participants[i], p.Name)
				counts[p.AssignedRole]++
			}
			assert.Len(t, counts, 2)
			assert.ElementsMatch(t, []int{1, 2}, []int{counts["Lead"], counts["Dev"]})
		})
	}
}

func TestHandleAssign_InvalidBody(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assign", bytes.NewReader([]byte("{")))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decode[ErrorResponse](t, rec).Error)
}

func TestHandleReveal(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/reveal",
		TeamRequest{Participants: []string{"Alice", "Bob"}, Roles: []string{"Lead", "Dev"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[RevealResponse](t, rec)
	assert.NotEmpty(t, resp.RunID)
	require.Len(t, resp.Frames, 3)
	for i, f := range resp.Frames {
		assert.Equal(t, i+1, f.Tick)
		assert.Equal(t, i == 2, f.Final)
	}
	assert.Equal(t, resp.Frames[2].Participants, resp.Participants)
	assert.Equal(t, MessageAssigned, resp.Message)
}

func TestHandleReveal_Busy(t *testing.T) {
	s := setupTestServerWithReveal(t, reveal.Config{Ticks: 2, Interval: time.Second})

	ps := TeamRequest{Participants: []string{"Alice"}, Roles: []string{"Lead"}}
	team, roles, err := teamFromNames(ps.Participants, ps.Roles)
	require.NoError(t, err)
	_, err = s.svc.Reveal.Start(context.Background(), team, roles, nil)
	require.NoError(t, err)

	rec := s.do(t, http.MethodPost, "/api/v1/reveal", ps)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleReveal_Validation(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/reveal", TeamRequest{Roles: []string{"Lead"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty_participants", decode[ErrorResponse](t, rec).Reason)
	assert.Equal(t, reveal.StateIdle, s.svc.Reveal.State())
}

func TestConfigurationsAPI(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/configurations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[ListResponse](t, rec).Configurations)

	var ids []string
	for _, name := range []string{"Standup", "Retro"} {
		rec = s.do(t, http.MethodPost, "/api/v1/configurations", SaveRequest{
			Name:         name,
			Participants: []string{"Alice", "Bob"},
			Roles:        []string{"Lead"},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		saved := decode[SaveResponse](t, rec)
		assert.Equal(t, MessageSaved, saved.Message)
		assert.Equal(t, name, saved.Configuration.Name)
		assert.NotEmpty(t, saved.Configuration.Date)
		ids = append(ids, saved.Configuration.ID)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/configurations", nil)
	list := decode[ListResponse](t, rec).Configurations
	require.Len(t, list, 2)
	assert.Equal(t, ids, []string{list[0].ID, list[1].ID})

	rec = s.do(t, http.MethodGet, "/api/v1/configurations/"+ids[0], nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[configstore.Configuration](t, rec)
	assert.Equal(t, "Standup", got.Name)
	require.Len(t, got.TeamMembers, 2)
	assert.Equal(t, "Alice", got.TeamMembers[0].Name)

	rec = s.do(t, http.MethodDelete, "/api/v1/configurations/"+ids[0], nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/configurations/"+ids[0], nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/configurations/"+ids[0], nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/configurations", nil)
	list = decode[ListResponse](t, rec).Configurations
	require.Len(t, list, 1)
	assert.Equal(t, ids[1], list[0].ID)
}

func TestSaveConfiguration_Validation(t *testing.T) {
	tests := []struct {
		name       string
		body       SaveRequest
		wantReason string
	}{
		{"blank name", SaveRequest{Name: " ", Participants: []string{"A"}, Roles: []string{"R"}}, "empty_name"},
		{"empty team", SaveRequest{Name: "Team", Roles: []string{"R"}}, "empty_configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(t)
			rec := s.do(t, http.MethodPost, "/api/v1/configurations", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantReason, decode[ErrorResponse](t, rec).Reason)
		})
	}
}

func TestServerLifecycle(t *testing.T) {
	t.Run("starts and shuts down gracefully", func(t *testing.T) {
		s := setupTestServer(t)

		errChan := make(chan error, 1)
		go func() {
			errChan <- s.Start()
		}()

		time.Sleep(100 * time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, s.Shutdown(ctx))

		select {
		case err := <-errChan:
			assert.NoError(t, err)
		case <-time.After(6 * time.Second):
			t.Fatal("server did not shut down in time")
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("adds request ID to response and logs", func(t *testing.T) {
		s := setupTestServer(t)

		rec := s.do(t, http.MethodGet, "/health", nil)
		rid := rec.Header().Get(echo.HeaderXRequestID)
		assert.NotEmpty(t, rid)

		s.logger.AssertLogged(t, zapcore.InfoLevel, "http request")
		s.logger.AssertField(t, "http request", "request.id", rid)
		s.logger.AssertField(t, "http request", "status", int64(http.StatusOK))
	})

	t.Run("recovers from panic", func(t *testing.T) {
		s := setupTestServer(t)

		s.echo.GET("/panic", func(c echo.Context) error {
			panic("test panic")
		})

		rec := httptest.NewRecorder()
		assert.NotPanics(t, func() {
			s.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
		})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
