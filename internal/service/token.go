package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Undertone0809/ecjtu/internal/domain"
	"github.com/Undertone0809/ecjtu/internal/store"
)

var (
	// ErrTokenExpired means the token was ours and well formed but its
	// lifetime has passed.
	ErrTokenExpired = errors.New("service: token expired")

	// ErrTokenInvalid means the token is not one we issued, or was rotated
	// away by a newer login.
	ErrTokenInvalid = errors.New("service: token invalid")
)

// Authenticator logs a student into the upstream portal and hands back the
// session cookies to persist. Implemented by the portal client; faked in
// tests.
type Authenticator interface {
	Login(ctx context.Context, studentID, password string) ([]domain.Cookie, error)
}

// TokenService mints and verifies the API's bearer tokens and keeps the
// per-student session records in step with upstream logins.
//
// Access tokens are short-lived HS256 JWTs carrying only the student id.
// Refresh tokens are long-lived and additionally carry the portal password so
// a refresh can re-run the upstream login without any other persisted secret.
type TokenService struct {
	Store         store.Store
	Authenticator Authenticator

	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Now is the clock; nil means time.Now. Injected by expiry tests.
	Now func() time.Time
}

type accessClaims struct {
	jwt.RegisteredClaims
}

type refreshClaims struct {
	// Password is the portal password, carried so Refresh can re-login.
	// Refresh tokens must therefore be treated as credentials themselves.
	Password string `json:"pwd"`
	jwt.RegisteredClaims
}

// CreateTokens logs the student into the portal and, on success, issues a
// fresh token pair and overwrites the persisted session. A failed login
// issues nothing and leaves any previous session untouched.
func (s *TokenService) CreateTokens(ctx context.Context, studentID, password string) (domain.TokenPair, error) {
	cookies, err := s.Authenticator.Login(ctx, studentID, password)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return s.issue(ctx, studentID, password, cookies)
}

// Refresh validates a refresh token, re-runs the upstream login with the
// credentials it carries, and rotates both tokens. The old access token stops
// resolving as soon as the new session record lands.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	var claims refreshClaims
	token, err := jwt.ParseWithClaims(refreshToken, &claims, s.refreshKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !token.Valid {
		return domain.TokenPair{}, ErrTokenInvalid
	}
	if claims.Subject == "" || claims.Password == "" {
		return domain.TokenPair{}, ErrTokenInvalid
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(s.now()) {
		return domain.TokenPair{}, ErrTokenExpired
	}

	cookies, err := s.Authenticator.Login(ctx, claims.Subject, claims.Password)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return s.issue(ctx, claims.Subject, claims.Password, cookies)
}

// ResolveStudentID maps a presented access token to its student. A token that
// fails signature checks, or that is no longer the student's current token,
// is invalid; a current token past its lifetime is expired. Invalid wins over
// expired so rotated-away tokens never read as merely stale.
func (s *TokenService) ResolveStudentID(ctx context.Context, accessToken string) (string, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(accessToken, &claims, s.accessKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !token.Valid {
		return "", ErrTokenInvalid
	}

	session, err := s.Store.Sessions().GetByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrTokenInvalid
		}
		return "", err
	}

	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(s.now()) {
		return "", ErrTokenExpired
	}
	return session.StudentID, nil
}

// CookiesFor returns the persisted portal cookies for a student.
func (s *TokenService) CookiesFor(ctx context.Context, studentID string) ([]domain.Cookie, error) {
	session, err := s.Store.Sessions().GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return session.Cookies, nil
}

func (s *TokenService) issue(ctx context.Context, studentID, password string, cookies []domain.Cookie) (domain.TokenPair, error) {
	now := s.now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			Subject:   studentID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.AccessTTL)),
		},
	})
	accessToken, err := access.SignedString(s.AccessSecret)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims{
		Password: password,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			Subject:   studentID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.RefreshTTL)),
		},
	})
	refreshToken, err := refresh.SignedString(s.RefreshSecret)
	if err != nil {
		return domain.TokenPair{}, err
	}

	err = s.Store.Sessions().Upsert(ctx, domain.StoredSession{
		StudentID:   studentID,
		AccessToken: accessToken,
		Cookies:     cookies,
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.AccessTTL / time.Second),
	}, nil
}

func (s *TokenService) accessKey(*jwt.Token) (any, error)  { return s.AccessSecret, nil }
func (s *TokenService) refreshKey(*jwt.Token) (any, error) { return s.RefreshSecret, nil }

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
