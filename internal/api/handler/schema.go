package handler

import (
	"github.com/imagetagger/accounts/internal/core/domain"
	"github.com/imagetagger/accounts/internal/core/ports"
)

// --- Requests ---

// authForm is the combined login/registration form. The presence of the
// login field selects the login form.
type authForm struct {
	Login     *string `json:"login" form:"login"`
	Username  string  `json:"username" form:"username"`
	Password  string  `json:"password" form:"password"`
	Email     string  `json:"email" form:"email"`
	Password1 string  `json:"password1" form:"password1"`
	Password2 string  `json:"password2" form:"password2"`
}

type loginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registrationForm struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
	Password1 string `json:"password1" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required,eqfield=Password1"`
}

type createTeamRequest struct {
	Name string `json:"name" form:"name" validate:"required,max=100"`
}

type addMemberRequest struct {
	Username string `json:"username" form:"username"`
}

type searchRequest struct {
	SearchQuery string `json:"searchquery" form:"searchquery"`
}

// --- Responses ---

type validationResponse struct {
	Errors map[string]string `json:"errors"`
}

// actionResponse is returned by every state-changing endpoint. The client
// shows the notices after following the redirect.
type actionResponse struct {
	Redirect string          `json:"redirect"`
	Notices  []domain.Notice `json:"notices"`
}

type loginResponse struct {
	Redirect string       `json:"redirect"`
	Token    string       `json:"token"`
	User     *domain.User `json:"user"`
}

type loginPageResponse struct {
	Authenticated bool `json:"authenticated"`
}

type registrationResponse struct {
	User    *domain.User    `json:"user"`
	Notices []domain.Notice `json:"notices"`
}

type createTeamResponse struct {
	Redirect string       `json:"redirect"`
	Team     *domain.Team `json:"team"`
}

type teamViewResponse struct {
	Team             *domain.Team      `json:"team"`
	Members          []domain.User     `json:"members"`
	Admins           []domain.User     `json:"admins"`
	IsMember         bool              `json:"is_member"`
	IsAdmin          bool              `json:"is_admin"`
	NoAdmin          bool              `json:"no_admin"`
	PublicImageSets  []domain.ImageSet `json:"public_image_sets"`
	PrivateImageSets []domain.ImageSet `json:"private_image_sets"`
}

type leaveConfirmationResponse struct {
	User *domain.User `json:"user"`
	Team *domain.Team `json:"team"`
}

type exploreTeamsResponse struct {
	SearchQuery string        `json:"searchquery,omitempty"`
	Teams       []domain.Team `json:"teams"`
}

type exploreUsersResponse struct {
	SearchQuery string        `json:"searchquery,omitempty"`
	Users       []domain.User `json:"users"`
}

type profileResponse struct {
	User   *domain.User  `json:"user"`
	Teams  []domain.Team `json:"teams"`
	Points int           `json:"points"`
}

// --- Mapping ---

const (
	pathIndex        = "/"
	pathExploreTeams = "/teams/explore"
)

func teamPath(teamID string) string { return "/teams/" + teamID }

// redirectPath resolves a service destination to a URL path.
func redirectPath(dest ports.Destination, teamID string) string {
	switch dest {
	case ports.DestinationTeam:
		return teamPath(teamID)
	case ports.DestinationExploreTeams:
		return pathExploreTeams
	default:
		return pathIndex
	}
}

func toActionResponse(res *ports.ActionResult) actionResponse {
	notices := res.Notices
	if notices == nil {
		notices = []domain.Notice{}
	}
	return actionResponse{Redirect: redirectPath(res.Destination, res.TeamID), Notices: notices}
}

func toTeamViewResponse(v *ports.TeamView) teamViewResponse {
	return teamViewResponse{
		Team:             v.Team,
		Members:          v.Members,
		Admins:           v.Admins,
		IsMember:         v.IsMember,
		IsAdmin:          v.IsAdmin,
		NoAdmin:          v.NoAdmin,
		PublicImageSets:  v.PublicImageSets,
		PrivateImageSets: v.PrivateImageSets,
	}
}
