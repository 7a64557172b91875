package nouvelles

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// userPayload is the public representation of a user in auth responses.
type userPayload struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Pseudo string `json:"pseudo"`
}

func (a *App) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid JSON body"})
	}

	if req.Email == "" || req.Pseudo == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Message: "Missing fields: email, pseudo and password are required.",
		})
	}
	// Field-format failures on registration respond 400, unlike the 422
	// used for story submission.
	if err := checkStruct(req); err != nil {
		var derr *Error
		if errors.As(err, &derr) {
			return c.JSON(http.StatusBadRequest, errorResponse{Message: derr.Message, Errors: derr.Fields})
		}
		return err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return Internal("hash password", err)
	}

	user, err := a.Store.CreateUser(req.Email, req.Pseudo, hash, []string{"ROLE_USER"})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, userPayload{ID: user.ID, Email: user.Email, Pseudo: user.Pseudo})
}

func (a *App) handleLogin(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, errorResponse{Message: "Too many login attempts. Try again later."})
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid JSON body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Missing credentials"})
	}

	user, err := a.Store.FindUserByEmail(req.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return Unauthorized("Invalid credentials")
	}
	ok, err := VerifyPassword(user.PasswordHash, req.Password)
	if err != nil || !ok {
		return Unauthorized("Invalid credentials")
	}

	if err := setUserSession(c, user.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Logged in successfully",
		"user":    userPayload{ID: user.ID, Email: user.Email, Pseudo: user.Pseudo},
	})
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearUserSession(c); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
