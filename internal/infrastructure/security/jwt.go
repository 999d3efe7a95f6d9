package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fortask/user-service/internal/core/domain"
)

// DefaultTokenTTL applies when Issue is called with a non-positive ttl.
const DefaultTokenTTL = 30 * time.Minute

// expiryPrecision is the resolution of the exp claim. exp is now+ttl rounded
// up to it, so a token never expires before now+ttl.
const expiryPrecision = time.Millisecond

func init() {
	// Encode numeric dates finer than expiryPrecision so exp survives the
	// float64 round trip and can be recovered exactly.
	jwt.TimePrecision = time.Microsecond
}

// Claims is the payload of an access token.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 access tokens.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for subject that expires after ttl.
func (m *TokenManager) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := m.now().UTC()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceil(now.Add(ttl), expiryPrecision)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Validate returns the subject of a well-formed, correctly signed and
// unexpired token. Any failure yields domain.ErrInvalidToken.
func (m *TokenManager) Validate(token string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
		// exp decodes through a float64 and can come back up to a
		// microsecond early; the exact comparison happens below.
		jwt.WithLeeway(expiryPrecision),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	if !m.now().Before(claims.ExpiresAt.Round(expiryPrecision)) {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}

func ceil(t time.Time, d time.Duration) time.Time {
	if r := t.Truncate(d); r.Before(t) {
		return r.Add(d)
	}
	return t
}
