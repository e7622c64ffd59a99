package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "ecomauth/internal/errors"
	"ecomauth/internal/service"
)

// StatusAlreadyVerified is the non-standard code the API uses when signup hits
// an email that is already registered and verified.
const StatusAlreadyVerified = 209

// AuthHandler handles the authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest represents a user registration request.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyAccountRequest represents an OTP verification request.
type VerifyAccountRequest struct {
	UserID string `json:"userId" validate:"required"`
	OTP    string `json:"otp" validate:"required"`
}

// ResendOTPRequest represents an OTP resend request.
type ResendOTPRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest represents a password recovery request.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RecoverAccountRequest represents a password reset with OTP.
type RecoverAccountRequest struct {
	UserID   string `json:"userId" validate:"required"`
	OTP      string `json:"otp" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Signup godoc
// @Summary Register a new user and send a verification OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Success 200 {object} map[string]interface{} "existing unverified email, new OTP sent"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, created, err := h.authService.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyVerified) {
			return c.JSON(StatusAlreadyVerified, echo.Map{
				"message": "Email already registered and verified",
			})
		}
		return serverError(c, err, "SIGNUP_FAILED")
	}

	if created {
		return c.JSON(http.StatusCreated, echo.Map{
			"message": "User registered successfully. OTP sent for verification.",
			"userId":  user.ID,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Email already exists but not verified. New OTP sent.",
		"userId":  user.ID,
	})
}

// VerifyAccount godoc
// @Summary Verify a user's email with an OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyAccountRequest true "User id and OTP"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse "OTP expired"
// @Failure 402 {object} errors.ErrorResponse "invalid OTP"
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/verify-account [post]
func (h *AuthHandler) VerifyAccount(c echo.Context) error {
	var req VerifyAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	token, err := h.authService.VerifyAccount(c.Request().Context(), userID, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			return userNotFound(c)
		case errors.Is(err, apperrors.ErrOTPExpired):
			return c.JSON(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: "OTP has expired", Code: "OTP_EXPIRED",
			})
		case errors.Is(err, apperrors.ErrInvalidOTP):
			return c.JSON(http.StatusPaymentRequired, apperrors.ErrorResponse{
				Error: "Invalid OTP", Code: "INVALID_OTP",
			})
		}
		return serverError(c, err, "VERIFICATION_FAILED")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Account verified successfully",
		"token":   token,
	})
}

// ResendOTP godoc
// @Summary Re-issue the verification OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResendOTPRequest true "User id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(c echo.Context) error {
	var req ResendOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := h.authService.ResendOTP(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return userNotFound(c)
		}
		return serverError(c, err, "RESEND_FAILED")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "OTP resent.",
		"userId":  user.ID,
	})
}

// Login godoc
// @Summary Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse "wrong password"
// @Failure 403 {object} map[string]interface{} "email not verified, new OTP sent"
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			return userNotFound(c)
		case errors.Is(err, apperrors.ErrEmailNotVerified):
			return c.JSON(http.StatusForbidden, echo.Map{
				"message": "Email not verified. Please verify your email first.",
				"userId":  user.ID,
			})
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: "Invalid password", Code: "INVALID_CREDENTIALS",
			})
		}
		return serverError(c, err, "LOGIN_FAILED")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// ForgotPassword godoc
// @Summary Send a password recovery OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.ForgotPassword(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return userNotFound(c)
		}
		return serverError(c, err, "FORGOT_PASSWORD_FAILED")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "OTP sent for password recovery",
		"userId":  user.ID,
	})
}

// RecoverAccount godoc
// @Summary Reset the password with a recovery OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RecoverAccountRequest true "User id, OTP, and new password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse "invalid OTP"
// @Failure 402 {object} errors.ErrorResponse "OTP expired"
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/recover-account [post]
func (h *AuthHandler) RecoverAccount(c echo.Context) error {
	var req RecoverAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	token, err := h.authService.RecoverAccount(c.Request().Context(), userID, req.OTP, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			return userNotFound(c)
		// Status codes flip relative to verify-account; the API contract
		// predates this service and clients depend on them.
		case errors.Is(err, apperrors.ErrInvalidOTP):
			return c.JSON(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: "Invalid OTP", Code: "INVALID_OTP",
			})
		case errors.Is(err, apperrors.ErrOTPExpired):
			return c.JSON(http.StatusPaymentRequired, apperrors.ErrorResponse{
				Error: "OTP has expired", Code: "OTP_EXPIRED",
			})
		}
		return serverError(c, err, "RECOVERY_FAILED")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Password updated successfully",
		"token":   token,
	})
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func userNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, apperrors.ErrorResponse{
		Error: "User not found", Code: "USER_NOT_FOUND",
	})
}

// serverError logs the underlying failure and returns a generic 500 so
// dependency internals never leak to clients.
func serverError(c echo.Context, err error, code string) error {
	c.Logger().Errorf("%s: %v", code, err)
	return c.JSON(http.StatusInternalServerError, apperrors.ErrorResponse{
		Error: "internal server error", Code: code,
	})
}
