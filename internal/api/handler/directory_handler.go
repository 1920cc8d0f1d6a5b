package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/imagetagger/accounts/internal/core/ports"
)

// DirectoryHandler serves the team and user directories and user profiles.
type DirectoryHandler struct {
	directory ports.DirectoryService
	teams     ports.TeamService
}

func NewDirectoryHandler(directory ports.DirectoryService, teams ports.TeamService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, teams: teams}
}

// searchTerm reads the search query of a POST. GET requests list everything.
func searchTerm(c echo.Context) (string, error) {
	if c.Request().Method != http.MethodPost {
		return "", nil
	}
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return req.SearchQuery, nil
}

// ExploreTeams handles GET and POST /teams/explore.
//
// @Summary      Search teams
// @Description  Case-insensitive substring match on the team name.
// @Tags         directory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      searchRequest  false  "Search term"
// @Success      200   {object}  exploreTeamsResponse
// @Router       /teams/explore [get]
// @Router       /teams/explore [post]
func (h *DirectoryHandler) ExploreTeams(c echo.Context) error {
	term, err := searchTerm(c)
	if err != nil {
		return err
	}

	teams, err := h.directory.ExploreTeams(c.Request().Context(), term)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exploreTeamsResponse{SearchQuery: term, Teams: teams})
}

// ExploreUsers handles GET and POST /users/explore.
//
// @Summary      Search users
// @Description  Case-sensitive substring match on the username.
// @Tags         directory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      searchRequest  false  "Search term"
// @Success      200   {object}  exploreUsersResponse
// @Router       /users/explore [get]
// @Router       /users/explore [post]
func (h *DirectoryHandler) ExploreUsers(c echo.Context) error {
	term, err := searchTerm(c)
	if err != nil {
		return err
	}

	users, err := h.directory.ExploreUsers(c.Request().Context(), term)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exploreUsersResponse{SearchQuery: term, Users: users})
}

// Profile handles GET /users/:user_id.
//
// @Summary      User profile
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string  true  "User ID"
// @Success      200      {object}  profileResponse
// @Failure      404      {object}  map[string]string
// @Router       /users/{user_id} [get]
func (h *DirectoryHandler) Profile(c echo.Context) error {
	profile, err := h.teams.UserProfile(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{User: profile.User, Teams: profile.Teams, Points: profile.Points})
}
