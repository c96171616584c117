package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single verification failure reported to callers.
// The underlying reason (bad signature, malformed, expired, unsupported) is
// available through ClassifyTokenError for internal logging but must never
// reach an untrusted client.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and verifies the signed session tokens. All tokens are
// HS512 JWTs carrying the account email as subject plus role and userId
// claims, with second-granularity timestamps.
type TokenManager struct {
	keys *KeyProvider
	ttl  time.Duration
	now  func() time.Time
}

// NewTokenManager builds a manager around the process key provider.
func NewTokenManager(keys *KeyProvider, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{keys: keys, ttl: ttl, now: time.Now}
}

// Claims describes the JWT payload.
type Claims struct {
	Role   string `json:"role,omitempty"`
	UserID int64  `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a token for the subject. Expiry is issuedAt plus the configured
// TTL; nothing about the request influences the window.
func (tm *TokenManager) Issue(subject, role string, userID int64) (string, time.Time, error) {
	issuedAt := tm.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(tm.ttl)

	claims := &Claims{
		Role:   role,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	tokenString, err := token.SignedString(tm.keys.SigningKey())
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseAndVerify decodes the token, checks the signature against the process
// key and validates the expiry. Any failure collapses to ErrInvalidToken.
func (tm *TokenManager) ParseAndVerify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS512 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return tm.keys.SigningKey(), nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ClassifyTokenError names the verification failure for internal logs.
func ClassifyTokenError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unsupported"
	default:
		return "invalid"
	}
}
