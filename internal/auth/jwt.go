package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/platform/apierr"
)

// Claims are the bearer token claims issued by the hosted auth provider.
// Subject carries the user id.
type Claims struct {
	SessionID string `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

type Identity struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &Verifier{secret: []byte(secret), issuer: strings.TrimSpace(issuer)}, nil
}

func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, apierr.New(http.StatusUnauthorized, "invalid_token", fmt.Errorf("%w: %v", apierr.ErrUnauthorized, err))
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apierr.New(http.StatusUnauthorized, "invalid_token", apierr.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "invalid_token", fmt.Errorf("%w: invalid subject", apierr.ErrUnauthorized))
	}
	id := &Identity{UserID: userID}
	if claims.SessionID != "" {
		sid, err := uuid.Parse(claims.SessionID)
		if err != nil {
			return nil, apierr.New(http.StatusUnauthorized, "invalid_token", fmt.Errorf("%w: invalid session id", apierr.ErrUnauthorized))
		}
		id.SessionID = sid
	}
	return id, nil
}

// Issue signs a token for userID. Used by the operator CLI and tests.
func (v *Verifier) Issue(userID, sessionID uuid.UUID, ttl time.Duration) (string, error) {
	if userID == uuid.Nil {
		return "", errors.New("user id is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if sessionID != uuid.Nil {
		claims.SessionID = sessionID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
