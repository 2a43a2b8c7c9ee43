package usecases

import (
	"context"
	"strings"

	"contract-explorer.backend/internal/domain/entities"
	domainerrors "contract-explorer.backend/internal/domain/errors"
	"contract-explorer.backend/pkg/crypto"
	"contract-explorer.backend/pkg/jwt"
	"github.com/google/uuid"
)

// AuthUsecase authenticates the operator account configured for this deployment
type AuthUsecase struct {
	adminEmail        string
	adminPasswordHash string
	jwtService        *jwt.JWTService
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(adminEmail, adminPasswordHash string, jwtService *jwt.JWTService) *AuthUsecase {
	return &AuthUsecase{
		adminEmail:        strings.ToLower(strings.TrimSpace(adminEmail)),
		adminPasswordHash: adminPasswordHash,
		jwtService:        jwtService,
	}
}

// adminID is stable for a given email so tokens survive restarts
func adminID(email string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("contract-explorer:admin:"+email))
}

// Login checks the operator credentials and returns tokens
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	if u.adminEmail == "" || u.adminPasswordHash == "" {
		return nil, domainerrors.ErrInvalidCredentials
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email != u.adminEmail {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if !crypto.CheckPassword(input.Password, u.adminPasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	return u.issue(email)
}

// RefreshToken generates new tokens from a refresh token
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	claims, err := u.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, domainerrors.ErrUnauthorized
	}
	if claims.Role != entities.RoleAdmin || !strings.EqualFold(claims.Email, u.adminEmail) {
		return nil, domainerrors.ErrUnauthorized
	}
	return u.issue(u.adminEmail)
}

func (u *AuthUsecase) issue(email string) (*entities.AuthResponse, error) {
	pair, err := u.jwtService.GenerateTokenPair(adminID(email), email, entities.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    pair.ExpiresAt,
	}, nil
}
