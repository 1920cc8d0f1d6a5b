package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/imagetagger/accounts/internal/pkg/config"
)

var (
	routerOnce sync.Once
	testRouter *echo.Echo
)

// newTestRouter builds the router once per test binary. The Prometheus
// middleware registers on the default registry. Neither client dials until
// used, so no database has to be running.
func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	routerOnce.Do(func() {
		client, err := mongo.Connect(context.Background(), options.Client().
			ApplyURI("mongodb://127.0.0.1:1").
			SetServerSelectionTimeout(50*time.Millisecond))
		require.NoError(t, err)
		rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})

		cfg := &config.Config{JWTSecret: "test-secret", SessionTTL: time.Hour}
		testRouter = NewRouter(client.Database("imagetagger_test"), rdb, cfg, zerolog.Nop())
	})
	require.NotNil(t, testRouter)
	return testRouter
}

func routeMethods(e *echo.Echo, path string) []string {
	var methods []string
	for _, r := range e.Routes() {
		if r.Path == path {
			methods = append(methods, r.Method)
		}
	}
	sort.Strings(methods)
	return methods
}

func TestRouter_AdminChangesArePostOnly(t *testing.T) {
	e := newTestRouter(t)

	for _, path := range []string{
		"/teams/:team_id/admins/:user_id/grant",
		"/teams/:team_id/admins/:user_id/revoke",
	} {
		assert.Equal(t, []string{http.MethodPost}, routeMethods(e, path), path)
	}

	for _, target := range []string{
		"/teams/t1/admins/u2/grant",
		"/teams/t1/admins/u2/revoke",
	} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			t.Run(method+" "+target, func(t *testing.T) {
				rec := httptest.NewRecorder()
				e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

				assert.Contains(t, []int{http.StatusUnauthorized, http.StatusMethodNotAllowed}, rec.Code)
			})
		}
	}
}

func TestRouter_ConfirmationRoutesAcceptGetAndPost(t *testing.T) {
	e := newTestRouter(t)

	for _, path := range []string{
		"/teams/:team_id/leave",
		"/teams/:team_id/leave/:user_id",
		"/teams/explore",
		"/users/explore",
		"/login",
		"/logout",
	} {
		assert.Equal(t, []string{http.MethodGet, http.MethodPost}, routeMethods(e, path), path)
	}
}

func TestRouter_TeamRoutesRequireSession(t *testing.T) {
	e := newTestRouter(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/teams/t1/admins/u2/grant", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	teamsLog := component(base, "teams")
	teamsLog.Info().Msg("member added")
	authLog := component(base, "auth")
	authLog.Info().Msg("login")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	for i, want := range []string{"teams", "auth"} {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[i]), &entry))
		assert.Equal(t, want, entry["component"])
	}
}
