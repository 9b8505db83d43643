package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/AlmamyHaidara/biblioteque/app/echoServer/jwtx"
	"github.com/AlmamyHaidara/biblioteque/model"
	authsvc "github.com/AlmamyHaidara/biblioteque/service/auth"
	"github.com/AlmamyHaidara/biblioteque/util/apperr"
)

const refreshCookie = "refreshToken"

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Register a new user
// @Summary      Register user
// @Description  Register a new user account; role defaults to USER
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "email already registered"
// @Router       /api/v1/auth/register [post]
func (h *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  "error",
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	u, err := h.Svc.Register(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "register", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"status": "success",
		"data":   echo.Map{"user": u},
	})
}

// Login
// @Summary      Login
// @Description  Verify credentials, return an access token and set the refresh token cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any "invalid credentials"
// @Router       /api/v1/auth/login [post]
func (h *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "validation error", "errors": err.Error()})
	}

	u, tokens, err := h.Svc.Login(c.Request().Context(), req)
	if err != nil {
		if err == authsvc.ErrInvalidCredentials {
			return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": err.Error()})
		}
		return h.fail(c, "login", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     refreshCookie,
		Value:    tokens.RefreshToken,
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  time.Now().Add(tokens.RefreshTTL),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data": echo.Map{
			"user":        u,
			"accessToken": tokens.AccessToken,
		},
	})
}

// Refresh exchanges a valid refresh token for a new access token.
func (h *Controller) Refresh(c echo.Context) error {
	token := refreshTokenFrom(c)
	if token == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "refresh token not provided"})
	}

	access, err := h.Svc.Refresh(c.Request().Context(), token)
	if err != nil {
		clearRefreshCookie(c)
		if err == authsvc.ErrInvalidCredentials {
			return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "invalid refresh token"})
		}
		return h.fail(c, "refresh", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   echo.Map{"accessToken": access},
	})
}

func (h *Controller) Logout(c echo.Context) error {
	if token := refreshTokenFrom(c); token != "" {
		if err := h.Svc.Logout(c.Request().Context(), token); err != nil {
			return h.fail(c, "logout", err)
		}
	}
	clearRefreshCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "logged out successfully"})
}

func (h *Controller) LogoutAll(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "not authenticated"})
	}
	if err := h.Svc.LogoutAll(c.Request().Context(), uid); err != nil {
		return h.fail(c, "logout all", err)
	}
	clearRefreshCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "logged out from all devices successfully"})
}

func refreshTokenFrom(c echo.Context) string {
	if ck, err := c.Cookie(refreshCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}

func clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		HttpOnly: true,
		Path:     "/",
		MaxAge:   -1,
	})
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": err.Error()})
	case apperr.KindConflict:
		return c.JSON(http.StatusConflict, echo.Map{"status": "error", "message": err.Error()})
	case apperr.KindBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}
	h.Log.Error(op, "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "internal error"})
}
