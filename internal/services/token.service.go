package services

import (
	"context"
	"fmt"
	"time"

	"cleanhub/config"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const TOKEN_ISSUER = "cleanhub"

type AccessClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService verifies the HS256 bearer tokens presented to the API.
type TokenService struct {
	secret []byte
	log    logger.Logger
}

func NewTokenService(cfg config.Config) *TokenService {
	return &TokenService{
		secret: []byte(cfg.JWTSecret),
		log:    logger.New("TokenService"),
	}
}

func (ts *TokenService) ValidateToken(ctx context.Context, raw string) (uuid.UUID, error) {
	log := ts.log.TraceFromContext(ctx).Function("ValidateToken")

	var claims AccessClaims
	token, err := jwt.ParseWithClaims(
		raw,
		&claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, log.ErrMsg(
					"unexpected signing method: " + fmt.Sprintf("%v", token.Header["alg"]),
				)
			}
			return ts.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TOKEN_ISSUER),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		log.Debug("token rejected", "error", err)
		return uuid.Nil, fmt.Errorf("%w: invalid token", types.ErrAuthorization)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: token carries no valid userId", types.ErrAuthorization)
	}

	return userID, nil
}

// IssueToken signs a token for userID. Only the seed command and tests use it.
func (ts *TokenService) IssueToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TOKEN_ISSUER,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
	if err != nil {
		return "", ts.log.Function("IssueToken").Err("failed to sign token", err, "userID", userID)
	}

	return signed, nil
}
