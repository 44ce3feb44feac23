package utils // package utils provides helper functions for operator tokens and password hashing

import (
    "errors" // sentinel for rejected tokens
    "time"   // token expiry

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
)

// RoleAdmin is the only role issued today: the operator who may write
// showtimes and movies.
const RoleAdmin = "ADMIN"

// ErrInvalidToken is returned for any token that fails parsing, signature
// or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken is a signed JWT with its expiry.  Clients send it as
// "Authorization: Bearer <Token>".
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // UTC expiration time
}

// Claims are what the JWT middleware places on the request context.
type Claims struct {
    Subject string // operator login name (sub)
    Role    string // role claim
}

// NewAccessToken builds and signs an HS256 JWT for subject with the given
// role.  ttlMin is the lifetime in minutes.
func NewAccessToken(secret, subject, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  subject,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw against secret and returns its claims.
// Only HMAC-signed tokens are accepted.
func ParseAccessToken(secret, raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    }, jwt.WithExpirationRequired())
    if err != nil || !tok.Valid {
        return Claims{}, ErrInvalidToken
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, ErrInvalidToken
    }
    sub, _ := mc["sub"].(string)
    role, _ := mc["role"].(string)
    if sub == "" {
        return Claims{}, ErrInvalidToken
    }
    return Claims{Subject: sub, Role: role}, nil
}
