// Package auth resolves the player behind a request. Bearer tokens are HS256
// JWTs whose subject is the user id; the noop mode trusts the X-User-ID
// header for local runs and tests.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Mode represents the authentication strategy to apply for incoming requests.
type Mode string

const (
	// ModeJWT verifies HS256 bearer tokens.
	ModeJWT Mode = "jwt"
	// ModeNoop takes the user id from X-User-ID, or the bearer token itself.
	ModeNoop Mode = "noop"
)

// UserHeader carries the user id in noop mode.
const UserHeader = "X-User-ID"

const leeway = 5 * time.Second

// Config captures the inputs required to initialize a verifier.
type Config struct {
	Mode   Mode
	Secret string
	Issuer string
}

// User is the authenticated subject of a request.
type User struct {
	ID        string
	ExpiresAt int64
}

// Verifier turns a credential into the user it belongs to.
type Verifier interface {
	Verify(ctx context.Context, credential string) (User, error)
}

// NewVerifier constructs a Verifier matching cfg.
func NewVerifier(cfg Config) (Verifier, error) {
	switch cfg.Mode {
	case ModeJWT:
		if cfg.Secret == "" {
			return nil, ErrMissingSecret
		}
		return &hmacVerifier{secret: []byte(cfg.Secret), issuer: cfg.Issuer}, nil
	case ModeNoop, "":
		return noopVerifier{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, cfg.Mode)
	}
}

type hmacVerifier struct {
	secret []byte
	issuer string
}

func (v *hmacVerifier) Verify(_ context.Context, token string) (User, error) {
	options := []jwt.ParserOption{
		jwt.WithLeeway(leeway),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	claims := jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return v.secret, nil }, options...); err != nil {
		return User{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return User{}, ErrMissingSubject
	}

	u := User{ID: claims.Subject}
	if claims.ExpiresAt != nil {
		u.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return u, nil
}

type noopVerifier struct{}

func (noopVerifier) Verify(_ context.Context, credential string) (User, error) {
	if strings.TrimSpace(credential) == "" {
		return User{}, ErrMissingSubject
	}
	return User{ID: credential}, nil
}

type ctxKey string

const userCtxKey ctxKey = "aimtrack:user"

// Middleware rejects requests without a valid credential with 401 and stores
// the user in the request context otherwise.
func Middleware(verifier Verifier, onError func(http.ResponseWriter, error)) func(http.HandlerFunc) http.HandlerFunc {
	if onError == nil {
		onError = func(w http.ResponseWriter, err error) { http.Error(w, err.Error(), http.StatusUnauthorized) }
	}
	_, noop := verifier.(noopVerifier)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			credential, err := credentialFromRequest(r, noop)
			if err != nil {
				onError(w, err)
				return
			}
			user, err := verifier.Verify(r.Context(), credential)
			if err != nil {
				onError(w, err)
				return
			}
			next(w, r.WithContext(WithUser(r.Context(), user)))
		}
	}
}

func credentialFromRequest(r *http.Request, noop bool) (string, error) {
	if noop {
		if id := r.Header.Get(UserHeader); id != "" {
			return id, nil
		}
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", ErrMalformedHeader
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMalformedHeader
	}
	return token, nil
}

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userCtxKey).(User)
	return u, ok
}

// Sign issues an HS256 token for subject. It exists for tooling and tests;
// the server never issues tokens.
func Sign(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}
