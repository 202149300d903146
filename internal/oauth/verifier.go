package oauth

import (
	"context"
	"errors"
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/questly/auth-service/internal/logger"
)

// Provider endpoints and issuers. Both Google and Apple publish their
// signing keys as a JWKS document.
const (
	GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	AppleJWKSURL  = "https://appleid.apple.com/auth/keys"

	AppleIssuer = "https://appleid.apple.com"
)

// GoogleIssuers are the issuer values Google uses in ID tokens.
var GoogleIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// ErrInvalidToken is the single error reported for any verification failure:
// bad signature, unknown key, wrong audience or issuer, or expiry. Callers
// never learn which check failed.
var ErrInvalidToken = errors.New("invalid identity token")

// Identity is what a verified provider token asserts about the user.
type Identity struct {
	Email string // Verified email address
	Name  string // Display name, empty if the provider does not include one
}

// Verifier validates ID tokens issued by one federated identity provider.
type Verifier struct {
	keys     KeyProvider
	audience string
	issuers  []string
}

// NewVerifier creates a verifier that accepts tokens signed with a key from
// the given provider, addressed to the given audience, from one of the given
// issuers.
func NewVerifier(keys KeyProvider, audience string, issuers ...string) *Verifier {
	return &Verifier{
		keys:     keys,
		audience: audience,
		issuers:  issuers,
	}
}

// idTokenClaims are the claims this subsystem reads from a provider token.
type idTokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Verify checks the token signature against the provider's key set and the
// issuer and audience claims, and returns the asserted identity.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	var claims idTokenClaims

	_, err := jwt.ParseWithClaims(idToken, &claims,
		func(token *jwt.Token) (interface{}, error) {
			kid, _ := token.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("token header has no kid")
			}
			return v.keys.GetKey(ctx, kid)
		},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		logger.Log.Infow("identity token rejected", "err", err)
		return nil, ErrInvalidToken
	}

	if !slices.Contains(v.issuers, claims.Issuer) {
		logger.Log.Infow("identity token rejected", "issuer", claims.Issuer)
		return nil, ErrInvalidToken
	}

	if claims.Email == "" {
		logger.Log.Infow("identity token rejected", "reason", "no email claim")
		return nil, ErrInvalidToken
	}

	return &Identity{
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}
