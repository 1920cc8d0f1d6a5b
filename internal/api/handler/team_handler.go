package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/imagetagger/accounts/internal/api/metrics"
	"github.com/imagetagger/accounts/internal/core/domain"
	"github.com/imagetagger/accounts/internal/core/ports"
)

const msgTeamTaken = "Team with this Name already exists."

// TeamHandler handles team creation, membership and admin management.
type TeamHandler struct {
	service ports.TeamService
}

func NewTeamHandler(service ports.TeamService) *TeamHandler {
	return &TeamHandler{service: service}
}

// Create handles POST /teams.
//
// @Summary      Create a team
// @Description  The creator becomes the only member and admin of the new team.
// @Tags         teams
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTeamRequest  true  "Team name"
// @Success      201   {object}  createTeamResponse
// @Failure      409   {object}  validationResponse
// @Failure      422   {object}  validationResponse
// @Router       /teams [post]
func (h *TeamHandler) Create(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}

	var req createTeamRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return err
	}

	team, err := h.service.CreateTeam(c.Request().Context(), actor, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTeamExists):
			return c.JSON(http.StatusConflict, validationResponse{Errors: map[string]string{"name": msgTeamTaken}})
		case errors.Is(err, domain.ErrInvalidTeamName):
			return fieldErrors("name", "name is required")
		}
		return err
	}
	metrics.TeamsCreatedTotal.Inc()

	return c.JSON(http.StatusCreated, createTeamResponse{Redirect: teamPath(team.ID), Team: team})
}

// View handles GET and POST /teams/:team_id. A POST with a username adds that
// user as a member when the caller manages the team's users.
//
// @Summary      View a team
// @Tags         teams
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        team_id  path      string            true   "Team ID"
// @Param        body     body      addMemberRequest  false  "User to add"
// @Success      200      {object}  teamViewResponse
// @Failure      404      {object}  map[string]string
// @Router       /teams/{team_id} [get]
// @Router       /teams/{team_id} [post]
func (h *TeamHandler) View(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}

	in := ports.ViewTeamInput{ActorID: actor, TeamID: c.Param("team_id")}
	if c.Request().Method == http.MethodPost {
		var req addMemberRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		}
		in.AddUsername = req.Username
	}

	view, err := h.service.ViewTeam(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTeamViewResponse(view))
}

// GrantAdmin handles POST /teams/:team_id/admins/:user_id/grant.
//
// @Summary      Grant admin privileges
// @Description  Allowed for team admins, or for any member while the team has no admin.
// @Tags         teams
// @Produce      json
// @Security     BearerAuth
// @Param        team_id  path      string  true  "Team ID"
// @Param        user_id  path      string  true  "User to promote"
// @Success      200      {object}  actionResponse
// @Failure      404      {object}  map[string]string
// @Router       /teams/{team_id}/admins/{user_id}/grant [post]
func (h *TeamHandler) GrantAdmin(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}

	res, err := h.service.GrantAdmin(c.Request().Context(), actor, c.Param("team_id"), c.Param("user_id"))
	if err != nil {
		return err
	}
	metrics.AdminChangesTotal.WithLabelValues("grant", metrics.ActionResult(res.Rejected())).Inc()

	return c.JSON(http.StatusOK, toActionResponse(res))
}

// RevokeAdmin handles POST /teams/:team_id/admins/:user_id/revoke.
//
// @Summary      Revoke admin privileges
// @Tags         teams
// @Produce      json
// @Security     BearerAuth
// @Param        team_id  path      string  true  "Team ID"
// @Param        user_id  path      string  true  "User to demote"
// @Success      200      {object}  actionResponse
// @Failure      404      {object}  map[string]string
// @Router       /teams/{team_id}/admins/{user_id}/revoke [post]
func (h *TeamHandler) RevokeAdmin(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}

	res, err := h.service.RevokeAdmin(c.Request().Context(), actor, c.Param("team_id"), c.Param("user_id"))
	if err != nil {
		return err
	}
	metrics.AdminChangesTotal.WithLabelValues("revoke", metrics.ActionResult(res.Rejected())).Inc()

	return c.JSON(http.StatusOK, toActionResponse(res))
}

// Leave handles /teams/:team_id/leave and /teams/:team_id/leave/:user_id.
// GET returns the confirmation context; POST performs the removal.
//
// @Summary      Leave a team or kick a member
// @Tags         teams
// @Produce      json
// @Security     BearerAuth
// @Param        team_id  path      string  true  "Team ID"
// @Param        user_id  path      string  true  "Member to kick"
// @Success      200      {object}  leaveConfirmationResponse
// @Success      200      {object}  actionResponse
// @Failure      404      {object}  map[string]string
// @Router       /teams/{team_id}/leave/{user_id} [get]
// @Router       /teams/{team_id}/leave/{user_id} [post]
func (h *TeamHandler) Leave(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}

	in := ports.LeaveTeamInput{
		ActorID:  actor,
		TeamID:   c.Param("team_id"),
		TargetID: c.Param("user_id"),
		Confirm:  c.Request().Method == http.MethodPost,
	}
	res, err := h.service.LeaveTeam(c.Request().Context(), in)
	if err != nil {
		return err
	}

	if res.Confirmation != nil {
		return c.JSON(http.StatusOK, leaveConfirmationResponse{User: res.Confirmation.User, Team: res.Confirmation.Team})
	}

	if in.Confirm {
		kind := "leave"
		if in.TargetID != "" {
			kind = "kick"
		}
		metrics.MembershipRemovalsTotal.WithLabelValues(kind, metrics.ActionResult(res.Action.Rejected())).Inc()
	}

	return c.JSON(http.StatusOK, toActionResponse(res.Action))
}
