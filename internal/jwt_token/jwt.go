// Package jwttoken issues and validates the bearer tokens that carry the
// caller's wallet identity into the API.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	dErrors "github.com/kfrye1212/digitalpulse-tld/pkg/domain-errors"
)

// Claims are the JWT claims for registry access tokens. Wallet is the
// hex-encoded caller wallet.
type Claims struct {
	Wallet string `json:"wallet"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey, issuer, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateAccessToken signs a token binding the wallet for expiresIn.
func (s *JWTService) GenerateAccessToken(wallet id.WalletID, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Wallet: wallet.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// ValidateToken parses and verifies a token, returning its claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ExtractWallet validates the token and parses its wallet claim.
func (s *JWTService) ExtractWallet(tokenString string) (id.WalletID, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return id.WalletID{}, err
	}
	wallet, err := id.ParseWalletID(claims.Wallet)
	if err != nil {
		return id.WalletID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid wallet claim")
	}
	return wallet, nil
}
