package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/football-ticketing/internal/config"
	"github.com/iliyamo/football-ticketing/internal/middleware"
	"github.com/iliyamo/football-ticketing/internal/model"
	"github.com/iliyamo/football-ticketing/internal/repository"
	"github.com/iliyamo/football-ticketing/internal/utils"
)

// AuthHandler bundles dependencies for the cookie session endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Log   logrus.FieldLogger
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Log: log}
}

type userPart struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func publicUser(u *model.User) userPart {
	return userPart{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

func (h *AuthHandler) setSessionCookie(c echo.Context, tok utils.SessionToken) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    tok.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cfg.IsProd(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.Cfg.SessionTTL / time.Second),
		Expires:  tok.Exp,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cfg.IsProd(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// Register creates an account with the "user" role.  It does not log the
// caller in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.Create(ctx, repository.UserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.RoleUser,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email " + req.Email + " is already registered"})
		}
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "registration successful", "user": publicUser(u)})
}

// Login verifies credentials and sets the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	if !h.Cfg.SessionsEnabled() {
		h.Log.Error("login attempted but JWT_SECRET is not set")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": utils.ErrMissingSecret.Error()})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
		}
		return fail(c, h.Log, err)
	}
	if !utils.VerifyPassword(u.Password, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.SessionTTL)
	if err != nil {
		h.Log.WithError(err).Error("issue session token")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start session"})
	}
	h.setSessionCookie(c, tok)
	h.Log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user logged in")
	return c.JSON(http.StatusOK, echo.Map{"message": "login successful", "user": publicUser(u)})
}

// Session reports whether the request carries a valid session.  A token
// that fails verification, or whose user no longer exists, is cleared.
func (h *AuthHandler) Session(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		if middleware.SessionInvalid(c) {
			h.clearSessionCookie(c)
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"isAuthenticated": false, "error": "not authenticated"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.clearSessionCookie(c)
			return c.JSON(http.StatusUnauthorized, echo.Map{"isAuthenticated": false, "error": "not authenticated"})
		}
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"isAuthenticated": true, "user": publicUser(u)})
}

// Logout clears the session cookie.  Tokens are stateless so there is
// nothing to revoke server side.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
