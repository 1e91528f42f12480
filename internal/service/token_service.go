package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"fireenrich/internal/config"
	"fireenrich/internal/domain"
)

const clientAudience = "client"

// ClientClaims are the JWT claims of a client token. The subject is the client id.
type ClientClaims struct {
	jwt.RegisteredClaims
	ClientID uuid.UUID `json:"client_id"`
}

// ClientToken is an issued client token.
type ClientToken struct {
	Token     string    `json:"token"`
	ClientID  uuid.UUID `json:"client_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenService issues and validates client tokens. A client token stands in
// for a browser: its client id scopes stored credentials and sessions.
type TokenService interface {
	Issue() (*ClientToken, error)
	Validate(tokenString string) (uuid.UUID, error)
}

type tokenService struct {
	cfg config.TokenConfig
}

// NewTokenService creates a new TokenService implementation.
func NewTokenService(cfg config.TokenConfig) TokenService {
	return &tokenService{cfg: cfg}
}

func (s *tokenService) Issue() (*ClientToken, error) {
	now := time.Now()
	expiry := now.Add(s.cfg.Expiry)
	clientID := uuid.New()

	claims := &ClientClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{clientAudience},
		},
		ClientID: clientID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing client token: %w", err)
	}

	return &ClientToken{Token: signed, ClientID: clientID, ExpiresAt: expiry}, nil
}

func (s *tokenService) Validate(tokenString string) (uuid.UUID, error) {
	claims := &ClientClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithAudience(clientAudience))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid || claims.ClientID == uuid.Nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return claims.ClientID, nil
}
