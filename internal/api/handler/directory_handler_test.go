package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/imagetagger/accounts/internal/core/domain"
	"github.com/imagetagger/accounts/internal/core/ports"
)

type stubDirectoryService struct {
	teamsFn func(ctx context.Context, term string) ([]domain.Team, error)
	usersFn func(ctx context.Context, term string) ([]domain.User, error)
}

func (s *stubDirectoryService) ExploreTeams(ctx context.Context, term string) ([]domain.Team, error) {
	return s.teamsFn(ctx, term)
}

func (s *stubDirectoryService) ExploreUsers(ctx context.Context, term string) ([]domain.User, error) {
	return s.usersFn(ctx, term)
}

func TestDirectoryHandler_ExploreTeams(t *testing.T) {
	e := newTestEcho()
	var got []string
	stub := &stubDirectoryService{
		teamsFn: func(ctx context.Context, term string) ([]domain.Team, error) {
			got = append(got, term)
			return []domain.Team{{ID: "t1", Name: "Birds"}}, nil
		},
	}
	h := NewDirectoryHandler(stub, &stubTeamService{})

	rec := httptest.NewRecorder()
	c := authedContext(e, jsonRequest(http.MethodPost, "/teams/explore", `{"searchquery":"bird"}`), rec, "u1")
	if err := h.ExploreTeams(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp exploreTeamsResponse
	decode(t, rec, &resp)
	if resp.SearchQuery != "bird" || len(resp.Teams) != 1 {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	c = authedContext(e, httptest.NewRequest(http.MethodGet, "/teams/explore", nil), httptest.NewRecorder(), "u1")
	if err := h.ExploreTeams(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if len(got) != 2 || got[0] != "bird" || got[1] != "" {
		t.Fatalf("expected POST term then empty GET term, got %q", got)
	}
}

func TestDirectoryHandler_ExploreUsers(t *testing.T) {
	e := newTestEcho()
	stub := &stubDirectoryService{
		usersFn: func(ctx context.Context, term string) ([]domain.User, error) {
			if term != "ali" {
				t.Fatalf("unexpected term %q", term)
			}
			return []domain.User{{ID: "u1", Username: "alice"}}, nil
		},
	}
	h := NewDirectoryHandler(stub, &stubTeamService{})

	rec := httptest.NewRecorder()
	c := authedContext(e, jsonRequest(http.MethodPost, "/users/explore", `{"searchquery":"ali"}`), rec, "u1")
	if err := h.ExploreUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp exploreUsersResponse
	decode(t, rec, &resp)
	if len(resp.Users) != 1 || resp.Users[0].Username != "alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestDirectoryHandler_Profile(t *testing.T) {
	e := newTestEcho()
	teams := &stubTeamService{
		profileFn: func(ctx context.Context, userID string) (*ports.UserProfile, error) {
			if userID == "missing" {
				return nil, domain.ErrUserNotFound
			}
			return &ports.UserProfile{User: &domain.User{ID: userID, Username: "alice"}, Teams: []domain.Team{{ID: "t1"}}}, nil
		},
	}
	h := NewDirectoryHandler(&stubDirectoryService{}, teams)

	rec := httptest.NewRecorder()
	c := authedContext(e, httptest.NewRequest(http.MethodGet, "/users/u1", nil), rec, "u1", "user_id", "u1")
	if err := h.Profile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp profileResponse
	decode(t, rec, &resp)
	if resp.User.Username != "alice" || len(resp.Teams) != 1 || resp.Points != 0 {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	c = authedContext(e, httptest.NewRequest(http.MethodGet, "/users/missing", nil), httptest.NewRecorder(), "u1", "user_id", "missing")
	if err := h.Profile(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
