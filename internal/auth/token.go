package auth // package auth provides password hashing and signed token issuance/validation

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Token scopes.  Every token this service issues carries a scope claim
// naming what it may be used for; decode operations reject tokens whose
// scope does not match the operation.
const (
    ScopeAccess  = "access_token"
    ScopeRefresh = "refresh_token"
    ScopeEmail   = "email_token"
)

var (
    // ErrInvalidCredentials covers cryptographically bad tokens: wrong
    // signature, expired, malformed, or not a JWT at all.
    ErrInvalidCredentials = errors.New("could not validate credentials")
    // ErrInvalidScope means the token verified fine but was issued for a
    // different purpose (e.g. an access token presented to refresh).
    ErrInvalidScope = errors.New("invalid scope for token")
    // ErrUnprocessableToken is the blanket failure for email confirmation
    // tokens; the confirmation endpoint does not distinguish causes.
    ErrUnprocessableToken = errors.New("invalid token for email verification")
)

// Claims is the explicit claim set carried by every token.  Subject holds
// the user's email; Scope discriminates access/refresh/confirmation use.
type Claims struct {
    Scope string `json:"scope"`
    jwt.RegisteredClaims
}

// TokenService signs and validates all tokens with a single process-wide
// secret injected at construction.  It holds no mutable state and is safe
// for concurrent use.
type TokenService struct {
    secret     []byte
    accessTTL  time.Duration
    refreshTTL time.Duration
    emailTTL   time.Duration
}

// NewTokenService builds a TokenService.  Non-positive TTLs fall back to
// the defaults: 15 minutes for access, 7 days for refresh and email tokens.
func NewTokenService(secret string, accessTTL, refreshTTL, emailTTL time.Duration) *TokenService {
    if accessTTL <= 0 {
        accessTTL = 15 * time.Minute
    }
    if refreshTTL <= 0 {
        refreshTTL = 7 * 24 * time.Hour
    }
    if emailTTL <= 0 {
        emailTTL = 7 * 24 * time.Hour
    }
    return &TokenService{
        secret:     []byte(secret),
        accessTTL:  accessTTL,
        refreshTTL: refreshTTL,
        emailTTL:   emailTTL,
    }
}

// IssueAccessToken signs a short-lived HS256 token with scope access_token.
func (s *TokenService) IssueAccessToken(email string) (string, error) {
    return s.issue(email, ScopeAccess, s.accessTTL)
}

// IssueRefreshToken signs a long-lived HS256 token with scope refresh_token.
func (s *TokenService) IssueRefreshToken(email string) (string, error) {
    return s.issue(email, ScopeRefresh, s.refreshTTL)
}

// IssueEmailToken signs the token embedded in confirmation links.
func (s *TokenService) IssueEmailToken(email string) (string, error) {
    return s.issue(email, ScopeEmail, s.emailTTL)
}

func (s *TokenService) issue(email, scope string, ttl time.Duration) (string, error) {
    now := time.Now().UTC()
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
        Scope: scope,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   email,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
        },
    })
    return t.SignedString(s.secret)
}

// DecodeAccessToken returns the subject email of a valid access token.
// It fails with ErrInvalidScope when the token was issued for another
// purpose and ErrInvalidCredentials for every cryptographic failure.
func (s *TokenService) DecodeAccessToken(token string) (string, error) {
    return s.decode(token, ScopeAccess, ErrInvalidCredentials)
}

// DecodeRefreshToken returns the subject email of a valid refresh token.
func (s *TokenService) DecodeRefreshToken(token string) (string, error) {
    return s.decode(token, ScopeRefresh, ErrInvalidCredentials)
}

// DecodeEmailToken returns the subject email of a valid confirmation
// token.  Any failure, including a wrong scope, maps to
// ErrUnprocessableToken.
func (s *TokenService) DecodeEmailToken(token string) (string, error) {
    email, err := s.decode(token, ScopeEmail, ErrUnprocessableToken)
    if err != nil {
        return "", ErrUnprocessableToken
    }
    return email, nil
}

// decode parses and verifies the token, then checks the scope claim.
// credErr is returned for every parse failure; a signature-valid token
// with the wrong scope yields ErrInvalidScope so callers (and tests) can
// tell the two rejection modes apart.
func (s *TokenService) decode(token, wantScope string, credErr error) (string, error) {
    claims := &Claims{}
    parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, jwt.ErrTokenSignatureInvalid
        }
        return s.secret, nil
    })
    if err != nil || !parsed.Valid {
        return "", credErr
    }
    if claims.Scope != wantScope {
        return "", ErrInvalidScope
    }
    if claims.Subject == "" {
        return "", credErr
    }
    return claims.Subject, nil
}
