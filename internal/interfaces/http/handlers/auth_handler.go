package handlers

import (
	"context"
	"errors"
	"net/http"

	"contract-explorer.backend/internal/domain/entities"
	domainerrors "contract-explorer.backend/internal/domain/errors"
	"contract-explorer.backend/internal/interfaces/http/response"
	"contract-explorer.backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator issues operator tokens
type Authenticator interface {
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*entities.AuthResponse, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase Authenticator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUsecase Authenticator) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
	}
}

// Token exchanges operator credentials for a token pair
// POST /api/v1/auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	authResponse, err := h.authUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidCredentials) {
			logger.Warn(c.Request.Context(), "Rejected admin login", zap.String("client_ip", c.ClientIP()))
			response.Error(c, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeInvalidCredentials, "Invalid email or password", domainerrors.ErrInvalidCredentials))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, authResponse)
}

// RefreshToken issues a new token pair from a refresh token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input entities.RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	authResponse, err := h.authUsecase.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUnauthorized) {
			response.Error(c, domainerrors.Unauthorized("Invalid refresh token"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, authResponse)
}
