package http

import (
	"errors"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/roleshuffle/internal/configstore"
	"github.com/fyrsmithlabs/roleshuffle/internal/reveal"
	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
)

// errRevealBusy is reported when a reveal is already running.
var errRevealBusy = errors.New("a reveal is already in progress")

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: s.config.Version,
		Reveal:  s.svc.Reveal.State().String(),
	})
}

func (s *Server) handleAssign(c echo.Context) error {
	participants, roles, err := s.bindTeam(c)
	if err != nil {
		return s.fail(c, err)
	}

	assigned, err := s.svc.Engine.Assign(participants, roles)
	if err != nil {
		return s.fail(c, err)
	}

	s.logger.Debug(c.Request().Context(), "roles assigned",
		zap.Int("participants", len(participants)),
		zap.Int("roles", len(roles)))
	return c.JSON(http.StatusOK, AssignResponse{Participants: assigned, Message: MessageAssigned})
}

// handleReveal runs a full staged reveal and returns every frame.
func (s *Server) handleReveal(c echo.Context) error {
	participants, roles, err := s.bindTeam(c)
	if err != nil {
		return s.fail(c, err)
	}

	if s.svc.Reveal.Current() != nil {
		return s.fail(c, errRevealBusy)
	}

	var (
		mu     sync.Mutex
		frames []reveal.Frame
	)
	ctx := c.Request().Context()
	run, err := s.svc.Reveal.Start(ctx, participants, roles, func(f reveal.Frame) {
		mu.Lock()
		frames = append(frames, f)
		mu.Unlock()
	})
	if err != nil {
		return s.fail(c, err)
	}

	result, err := run.Wait(ctx)
	if err != nil {
		return s.fail(c, err)
	}

	mu.Lock()
	defer mu.Unlock()
	// Another request won the race to start; our callback never ran.
	if len(frames) == 0 {
		return s.fail(c, errRevealBusy)
	}

	return c.JSON(http.StatusOK, RevealResponse{
		RunID:        run.ID(),
		Frames:       frames,
		Participants: result,
		Message:      MessageAssigned,
	})
}

func (s *Server) handleListConfigurations(c echo.Context) error {
	items, err := s.svc.Store.List(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Configurations: items})
}

func (s *Server) handleSaveConfiguration(c echo.Context) error {
	var req SaveRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid save request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	participants, roles, err := teamFromNames(req.Participants, req.Roles)
	if err != nil {
		return s.fail(c, err)
	}

	cfg, err := s.svc.Store.Save(c.Request().Context(), req.Name, participants, roles)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, SaveResponse{Configuration: cfg, Message: MessageSaved})
}

func (s *Server) handleGetConfiguration(c echo.Context) error {
	cfg, err := s.svc.Store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, cfg)
}

// handleDeleteConfiguration is idempotent: unknown ids also return 204.
func (s *Server) handleDeleteConfiguration(c echo.Context) error {
	if err := s.svc.Store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// bindTeam decodes a TeamRequest and builds validated collections from it.
func (s *Server) bindTeam(c echo.Context) ([]roster.Participant, []roster.Role, error) {
	var req TeamRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid team request", zap.Error(err))
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return teamFromNames(req.Participants, req.Roles)
}

func teamFromNames(participantNames, roleNames []string) ([]roster.Participant, []roster.Role, error) {
	participants, err := roster.ParticipantsFromNames(participantNames)
	if err != nil {
		return nil, nil, err
	}
	roles, err := roster.RolesFromNames(roleNames)
	if err != nil {
		return nil, nil, err
	}
	return participants, roles, nil
}

// fail maps a domain error onto a status code and writes an ErrorResponse.
func (s *Server) fail(c echo.Context, err error) error {
	status, body := http.StatusInternalServerError, ErrorResponse{Error: "internal error"}

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		body.Error = http.StatusText(status)
		if msg, ok := httpErr.Message.(string); ok {
			body.Error = msg
		}
	case errors.Is(err, roster.ErrDuplicate):
		status = http.StatusConflict
		body = ErrorResponse{Error: err.Error(), Reason: string(roster.ReasonDuplicate)}
	case roster.IsValidation(err):
		status = http.StatusBadRequest
		body = ErrorResponse{Error: err.Error(), Reason: string(roster.ReasonOf(err))}
	case errors.Is(err, configstore.ErrNotFound):
		status = http.StatusNotFound
		body.Error = err.Error()
	case errors.Is(err, errRevealBusy):
		status = http.StatusConflict
		body.Error = err.Error()
	case errors.Is(err, reveal.ErrCanceled):
		status = http.StatusServiceUnavailable
		body.Error = "reveal canceled"
	case errors.Is(err, configstore.ErrClosed):
		status = http.StatusServiceUnavailable
		body.Error = err.Error()
	default:
		s.logger.Error(c.Request().Context(), "request failed", zap.Error(err))
	}

	return c.JSON(status, body)
}
