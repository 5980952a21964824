package auth

import (
	"errors"
	"net/http"

	"aerolink/internal/shared/middleware"
	"aerolink/internal/shared/utils/response"
	"aerolink/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   Service
	validator *validator.Validate
	log       *logger.Logger
}

func NewController(service Service, log *logger.Logger) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
		log:       log,
	}
}

// Signup godoc
// @Summary      Create an account
// @Description  Creates an unverified user and mails a verification link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      SignupRequest  true  "Signup"
// @Success      201      {object}  response.StandardApiResponse{data=SignupResponse}
// @Failure      400      {object}  response.StandardApiResponse
// @Failure      409      {object}  response.StandardApiResponse
// @Router       /auth/signup [post]
func (c *Controller) Signup(ctx *gin.Context) {
	var req SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	resp, err := c.service.Signup(ctx.Request.Context(), &req)
	if err != nil {
		var conflict *ConflictError
		switch {
		case errors.As(err, &conflict):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Account already exists", nil, conflict.Fields)
		default:
			c.log.LogHTTPError(ctx, err, http.StatusInternalServerError)
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to create account", nil, nil)
		}
		return
	}

	message := "Account created"
	if resp.VerificationRequired {
		message = "Account created, check your email to verify it"
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, message, resp, nil)
}

// Signin godoc
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      SigninRequest  true  "Credentials"
// @Success      200      {object}  response.StandardApiResponse{data=AuthResponse}
// @Failure      401      {object}  response.StandardApiResponse
// @Failure      403      {object}  response.StandardApiResponse
// @Router       /auth/signin [post]
func (c *Controller) Signin(ctx *gin.Context) {
	var req SigninRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	resp, err := c.service.Signin(ctx.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			c.log.LogAuthFailure(ctx.Request.Context(), "invalid credentials", ctx.ClientIP())
			response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Invalid username or password", nil, nil)
		case errors.Is(err, ErrEmailNotVerified):
			c.log.LogAuthFailure(ctx.Request.Context(), "email not verified", ctx.ClientIP())
			response.RespondJSON(ctx, "error", http.StatusForbidden, "Please verify your email before signing in", nil, nil)
		default:
			c.log.LogHTTPError(ctx, err, http.StatusInternalServerError)
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to sign in", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Signed in", resp, nil)
}

// VerifyEmail godoc
// @Summary      Confirm an email address
// @Tags         auth
// @Produce      json
// @Param        token  query     string  true  "Verification token"
// @Success      200    {object}  response.StandardApiResponse{data=AuthResponse}
// @Failure      400    {object}  response.StandardApiResponse
// @Failure      410    {object}  response.StandardApiResponse
// @Router       /auth/verify-email [get]
func (c *Controller) VerifyEmail(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Verification token is required", nil, nil)
		return
	}

	resp, err := c.service.VerifyEmail(ctx.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidVerificationToken):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid verification token", nil, nil)
		case errors.Is(err, ErrVerificationTokenExpired):
			response.RespondJSON(ctx, "error", http.StatusGone, "Verification link has expired", nil, nil)
		default:
			c.log.LogHTTPError(ctx, err, http.StatusInternalServerError)
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to verify email", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Email verified", resp, nil)
}

// RefreshToken godoc
// @Summary      Exchange a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RefreshTokenRequest  true  "Refresh token"
// @Success      200      {object}  response.StandardApiResponse{data=TokenPair}
// @Failure      401      {object}  response.StandardApiResponse
// @Router       /auth/refresh [post]
func (c *Controller) RefreshToken(ctx *gin.Context) {
	var req RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	tokenPair, err := c.service.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken):
			response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Invalid or expired refresh token", nil, nil)
		case errors.Is(err, ErrUserNotFound):
			response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not found", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to refresh token", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Token refreshed successfully", tokenPair, nil)
}

// GetMe godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.StandardApiResponse{data=UserResponse}
// @Failure      401  {object}  response.StandardApiResponse
// @Router       /auth/me [get]
func (c *Controller) GetMe(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	user, err := c.service.Me(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "User not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to load user", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "User data retrieved successfully", user, nil)
}
