package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/imagetagger/accounts/internal/api/metrics"
	"github.com/imagetagger/accounts/internal/api/middleware"
	"github.com/imagetagger/accounts/internal/core/domain"
	"github.com/imagetagger/accounts/internal/core/ports"
)

const (
	msgAccountCreated = "Your account was successfully created."
	msgBadLogin       = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	msgUserTaken      = "A user with that username or email already exists."
)

type AuthHandler struct {
	authService   ports.AuthService
	sessionTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(authService ports.AuthService, sessionTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, sessionTTL: sessionTTL, secureCookies: secureCookies}
}

// Login serves the combined login and registration page.
//
// A POST carrying a "login" field authenticates; any other POST registers a
// new account without logging it in. Authenticated callers are sent to the index.
//
// @Summary      Login or register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authForm              false  "Login (with login field) or registration form"
// @Success      200   {object}  loginResponse
// @Success      201   {object}  registrationResponse
// @Failure      401   {object}  validationResponse
// @Failure      409   {object}  validationResponse
// @Failure      422   {object}  validationResponse
// @Router       /login [get]
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	if optionalActorID(c) != "" {
		return c.JSON(http.StatusOK, actionResponse{Redirect: pathIndex, Notices: []domain.Notice{}})
	}
	if c.Request().Method != http.MethodPost {
		return c.JSON(http.StatusOK, loginPageResponse{Authenticated: false})
	}

	var form authForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	if form.Login != nil {
		return h.login(c, loginForm{Username: form.Username, Password: form.Password})
	}
	return h.register(c, registrationForm{
		Username:  form.Username,
		Email:     form.Email,
		Password1: form.Password1,
		Password2: form.Password2,
	})
}

func (h *AuthHandler) login(c echo.Context, form loginForm) error {
	if err := c.Validate(&form); err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), form.Username, form.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, validationResponse{Errors: map[string]string{"__all__": msgBadLogin}})
		}
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	c.SetCookie(h.sessionCookie(res.Token, int(h.sessionTTL.Seconds())))
	return c.JSON(http.StatusOK, loginResponse{Redirect: pathIndex, Token: res.Token, User: res.User})
}

func (h *AuthHandler) register(c echo.Context, form registrationForm) error {
	if err := c.Validate(&form); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: form.Username,
		Password: form.Password1,
		Email:    form.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return c.JSON(http.StatusConflict, validationResponse{Errors: map[string]string{"username": msgUserTaken}})
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			return fieldErrors("username", "username is required")
		}
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues("created").Inc()

	return c.JSON(http.StatusCreated, registrationResponse{
		User:    user,
		Notices: []domain.Notice{domain.Success(msgAccountCreated)},
	})
}

// Logout ends the current session, if any, and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  actionResponse
// @Router       /logout [get]
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), sessionID(c)); err != nil {
		return err
	}
	c.SetCookie(h.sessionCookie("", -1))
	return c.JSON(http.StatusOK, actionResponse{Redirect: pathIndex, Notices: []domain.Notice{}})
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
