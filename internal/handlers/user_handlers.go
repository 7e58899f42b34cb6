package handlers

import (
	"net/http"

	"authd/internal/common"
	"authd/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandlers exposes the protected profile and password endpoints. Both
// run behind the session middleware, so the verified caller is always in
// the request context.
type UserHandlers struct {
	accounts services.AccountService
}

func NewUserHandlers(accounts services.AccountService) *UserHandlers {
	return &UserHandlers{accounts: accounts}
}

// UpdateProfileRequest is a partial update: nil means leave the field alone.
type UpdateProfileRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// UpdateProfile applies a partial profile update. A caller may only update
// their own profile; the ownership check happens here, at the boundary.
func (h *UserHandlers) UpdateProfile(c echo.Context) error {
	caller, ok := common.CallerFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	if id != caller.ID {
		return common.SendForbiddenError(c, "Cannot update another user's profile")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	// Present-but-empty is rejected; absent fields pass through untouched.
	if req.Email != nil {
		if err := common.ValidateEmail(*req.Email); err != nil {
			return common.SendValidationError(c, "email", err.Error())
		}
	}
	if req.FirstName != nil {
		if err := common.ValidateName(*req.FirstName, "first_name"); err != nil {
			return common.SendValidationError(c, "first_name", err.Error())
		}
	}
	if req.LastName != nil {
		if err := common.ValidateName(*req.LastName, "last_name"); err != nil {
			return common.SendValidationError(c, "last_name", err.Error())
		}
	}

	user, err := h.accounts.UpdateProfile(c.Request().Context(), id, services.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// ChangePasswordRequest represents the password change payload
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword rotates the caller's password and revokes all their sessions.
func (h *UserHandlers) ChangePassword(c echo.Context) error {
	caller, ok := common.CallerFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.CurrentPassword == "" {
		return common.SendValidationError(c, "current_password", "current password is required")
	}
	if err := common.ValidatePassword(req.NewPassword); err != nil {
		return common.SendValidationError(c, "new_password", err.Error())
	}

	if err := h.accounts.ChangePassword(c.Request().Context(), caller.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
