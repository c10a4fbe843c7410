package service

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	apperrors "reservation-system/pkg/errors"
)

type JwtCustomClaim struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// JWTService verifies the bearer tokens issued by the external identity
// provider. GenerateAccessToken exists for local development and tests.
type JWTService interface {
	GenerateAccessToken(userID string) (string, error)
	ValidateToken(tokenString string) (*JwtCustomClaim, error)
	GetAccessTokenTTL() time.Duration
}

type jwtService struct {
	secretKey      string
	issuer         string
	accessTokenExp time.Duration
	clock          clockwork.Clock
}

func NewJWTService(secretKey, issuer string, accessTokenExp time.Duration, clock clockwork.Clock) JWTService {
	return &jwtService{
		secretKey:      secretKey,
		issuer:         issuer,
		accessTokenExp: accessTokenExp,
		clock:          clock,
	}
}

func (s *jwtService) GenerateAccessToken(userID string) (string, error) {
	now := s.clock.Now()
	claims := &JwtCustomClaim{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenExp)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(s.secretKey))
}

func (s *jwtService) GetAccessTokenTTL() time.Duration {
	return s.accessTokenExp
}

func (s *jwtService) ValidateToken(tokenString string) (*JwtCustomClaim, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.clock.Now), jwt.WithExpirationRequired()}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaim{}, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			return []byte(s.secretKey), nil
		default:
			return nil, apperrors.ErrInvalidSigningMethod
		}
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperrors.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return nil, apperrors.ErrTokenNotYetValid
	case errors.Is(err, apperrors.ErrInvalidSigningMethod):
		return nil, apperrors.ErrInvalidSigningMethod
	case err != nil:
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*JwtCustomClaim)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
