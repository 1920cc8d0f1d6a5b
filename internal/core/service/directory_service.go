package service

import (
	"context"
	"fmt"

	"github.com/imagetagger/accounts/internal/core/domain"
	"github.com/imagetagger/accounts/internal/core/ports"
)

type directoryService struct {
	teams ports.TeamRepository
	users ports.UserRepository
}

// NewDirectoryService returns the team and user directory.
func NewDirectoryService(teams ports.TeamRepository, users ports.UserRepository) ports.DirectoryService {
	return &directoryService{teams: teams, users: users}
}

// ExploreTeams matches team names ignoring case. An empty term lists every team.
func (s *directoryService) ExploreTeams(ctx context.Context, term string) ([]domain.Team, error) {
	teams, err := s.teams.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("explore teams: %w", err)
	}
	return teams, nil
}

// ExploreUsers matches usernames case-sensitively, unlike ExploreTeams.
func (s *directoryService) ExploreUsers(ctx context.Context, term string) ([]domain.User, error) {
	users, err := s.users.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("explore users: %w", err)
	}
	return users, nil
}
