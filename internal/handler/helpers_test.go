package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
	"github.com/noah-isme/wakaf-cms-api/internal/models"
	"github.com/noah-isme/wakaf-cms-api/internal/service"
	"github.com/noah-isme/wakaf-cms-api/pkg/identity"
)

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

type envelope[T any] struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    T                 `json:"data"`
	Meta    json.RawMessage   `json:"meta"`
	Details map[string]string `json:"details"`
}

// stubActivityService records entries together with the user bound to the request context.
type stubActivityService struct {
	mu      sync.Mutex
	entries []service.ActivityEntry
	actors  []identity.User
	logs    []models.ActivityLog
	limit   int
	err     error
}

func (s *stubActivityService) Record(ctx context.Context, entry service.ActivityEntry) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, _ := identity.SessionFromContext(ctx)
	s.entries = append(s.entries, entry)
	s.actors = append(s.actors, user.User)
	done := make(chan struct{})
	close(done)
	return done
}

func (s *stubActivityService) Wait() {}

func (s *stubActivityService) List(_ context.Context, limit int) ([]models.ActivityLog, error) {
	s.limit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.logs, nil
}

func (s *stubActivityService) StatsSince(context.Context, time.Time) ([]models.ActivityStat, error) {
	return nil, s.err
}

type stubStatsService struct {
	days     int
	response dto.ActivityStatsResponse
}

func (s *stubStatsService) Summary(_ context.Context, days int) (dto.ActivityStatsResponse, error) {
	s.days = days
	return s.response, nil
}

// signedIn stands in for the authentication middleware.
func signedIn(user identity.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(identity.WithSession(c.UserContext(), identity.Session{ID: "sid-1", User: user}))
		return c.Next()
	}
}
