package jwt

import (
	"context"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Verifier wraps the token machinery for bearer tokens issued by the hosted
// identity provider. The backend never issues tokens itself; it only verifies
// the shared-secret signature and reads the staff claims.
type Verifier struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewVerifier(secretKey string) *Verifier {
	return &Verifier{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (v *Verifier) JWTAuth() *jwtauth.JWTAuth {
	return v.tokenAuth
}

// Claims are the identity attributes the router and handlers care about.
type Claims struct {
	StaffID string
	Role    string
}

// FromContext extracts the verified claims placed in the request context by
// jwtauth.Verifier. ok is false when the token is missing or malformed.
func FromContext(ctx context.Context) (Claims, bool) {
	_, raw, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, false
	}

	staffID, ok := raw["staff_id"].(string)
	if !ok || staffID == "" {
		return Claims{}, false
	}

	role, _ := raw["role"].(string)

	return Claims{StaffID: staffID, Role: role}, true
}
