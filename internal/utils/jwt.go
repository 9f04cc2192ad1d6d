package utils // package utils provides the session token codec and password hashing

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/property-rental/internal/config"
	"github.com/iliyamo/property-rental/internal/model"
)

// ErrInvalidToken is the only verification failure. Malformed input, a bad
// signature and expiry are deliberately indistinguishable to callers.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the identity carried inside a session token. IssuedAt and
// ExpiresAt are filled in by Verify and ignored by Issue.
type Claims struct {
	UserID    uint64     `json:"userId"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	IssuedAt  time.Time  `json:"-"`
	ExpiresAt time.Time  `json:"-"`
}

// sessionClaims is the wire form: our fields next to the registered ones
// (sub, iat, exp).
type sessionClaims struct {
	UserID uint64 `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 session tokens. It holds no mutable
// state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock replaces time.Now, mainly for expiry tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec builds a codec from the signing secret and token TTL in cfg.
func NewTokenCodec(cfg *config.Config, opts ...CodecOption) *TokenCodec {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	c := &TokenCodec{secret: []byte(cfg.JWTSecret), ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TTL returns the lifetime given to every issued token.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token for the given identity. The expiry is issuance plus
// the configured TTL.
func (c *TokenCodec) Issue(in Claims) (string, error) {
	now := c.now().UTC()
	claims := sessionClaims{
		UserID: in.UserID,
		Email:  in.Email,
		Role:   string(in.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(in.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks structure, signature and expiry and returns the claims that
// were placed at issuance. Every failure yields ErrInvalidToken.
func (c *TokenCodec) Verify(raw string) (Claims, error) {
	var sc sessionClaims
	tok, err := jwt.ParseWithClaims(raw, &sc, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{
		UserID:    sc.UserID,
		Email:     sc.Email,
		Role:      model.Role(sc.Role),
		ExpiresAt: sc.ExpiresAt.Time,
	}
	if sc.IssuedAt != nil {
		out.IssuedAt = sc.IssuedAt.Time
	}
	return out, nil
}
