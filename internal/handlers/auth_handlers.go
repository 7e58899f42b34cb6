package handlers

import (
	"net/http"

	"authd/internal/common"
	"authd/internal/middleware"
	"authd/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers exposes the public authentication endpoints.
type AuthHandlers struct {
	accounts services.AccountService
}

func NewAuthHandlers(accounts services.AccountService) *AuthHandlers {
	return &AuthHandlers{accounts: accounts}
}

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register handles user registration
func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := common.ValidateEmail(req.Email); err != nil {
		return common.SendValidationError(c, "email", err.Error())
	}
	if err := common.ValidatePassword(req.Password); err != nil {
		return common.SendValidationError(c, "password", err.Error())
	}
	if err := common.ValidateName(req.FirstName, "first_name"); err != nil {
		return common.SendValidationError(c, "first_name", err.Error())
	}
	if err := common.ValidateName(req.LastName, "last_name"); err != nil {
		return common.SendValidationError(c, "last_name", err.Error())
	}

	resp, err := h.accounts.Register(c.Request().Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusCreated, resp)
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles user login with email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	resp, err := h.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// SuccessResponse is returned by logout and password change.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// Logout deletes the presented session. It reports success whether or not
// the token existed, so a caller cannot probe token validity here.
func (h *AuthHandlers) Logout(c echo.Context) error {
	token := middleware.BearerToken(c)
	if token != "" {
		if err := h.accounts.Logout(c.Request().Context(), token); err != nil {
			return serviceError(c, err)
		}
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// ValidateSession checks the bearer token and returns the session's user.
// Public route: the token itself is the credential.
func (h *AuthHandlers) ValidateSession(c echo.Context) error {
	token := middleware.BearerToken(c)
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
	}

	user, err := h.accounts.CurrentUser(c.Request().Context(), token)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// Me returns the verified caller placed in the context by the session middleware.
func (h *AuthHandlers) Me(c echo.Context) error {
	caller, ok := common.CallerFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
	}
	return c.JSON(http.StatusOK, caller)
}
