package backends

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/pionia/internal"
	"github.com/dmitrymomot/pionia/pkg/keyed"
)

// Claims are the JWT claims understood by the JWT backend.
type Claims struct {
	Extra       map[string]any `json:"extra,omitempty"`
	Permissions []string       `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

type claimsKey struct{}

// JWTOption configures the JWT backend.
type JWTOption func(*JWT)

// WithJWTExtractor sets where the token is read from. Defaults to the Bearer header.
func WithJWTExtractor(sources ...internal.ExtractorSource) JWTOption {
	return func(j *JWT) {
		j.extractor = internal.NewExtractor(sources...)
	}
}

// WithJWTIssuer requires and sets the "iss" claim.
func WithJWTIssuer(iss string) JWTOption {
	return func(j *JWT) {
		j.issuer = iss
	}
}

// WithJWTAudience requires the "aud" claim to contain aud.
func WithJWTAudience(aud string) JWTOption {
	return func(j *JWT) {
		j.audience = aud
	}
}

// WithJWTKeyFunc verifies tokens with fn instead of the HMAC secret,
// e.g. for RS256 public keys. methods lists the accepted algorithms.
func WithJWTKeyFunc(fn jwt.Keyfunc, methods ...string) JWTOption {
	return func(j *JWT) {
		j.keyFunc = fn
		j.methods = methods
	}
}

// WithJWTServices restricts the backend to the given services.
func WithJWTServices(services ...string) JWTOption {
	return func(j *JWT) {
		j.services = services
	}
}

// WithJWTLeeway tolerates clock skew when checking exp and nbf.
func WithJWTLeeway(d time.Duration) JWTOption {
	return func(j *JWT) {
		j.leeway = d
	}
}

// JWT authenticates requests carrying a signed JSON Web Token.
type JWT struct {
	keyFunc   jwt.Keyfunc
	extractor internal.Extractor
	issuer    string
	audience  string
	secret    []byte
	methods   []string
	services  []string
	leeway    time.Duration
}

// NewJWT creates a backend verifying HS256 tokens signed with secret.
func NewJWT(secret []byte, opts ...JWTOption) *JWT {
	j := &JWT{
		secret:    secret,
		methods:   []string{jwt.SigningMethodHS256.Alg()},
		extractor: internal.NewExtractor(internal.FromBearerToken()),
	}
	j.keyFunc = func(*jwt.Token) (any, error) {
		if len(j.secret) == 0 {
			return nil, ErrNoSecret
		}
		return j.secret, nil
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *JWT) Name() string { return "jwt" }

func (j *JWT) LimitServices() []string { return j.services }

// Authenticate verifies the token and maps "sub" to the user and "permissions"
// to the granted permissions. No token, or a credential that is not shaped like a JWT
// (an opaque API token sharing the Bearer header), passes to the next backend.
func (j *JWT) Authenticate(r *internal.Request) (*internal.AuthContext, error) {
	raw, ok := j.extractor.Extract(r)
	if !ok {
		return nil, nil
	}

	claims, err := j.Parse(raw)
	if err != nil {
		r.LogDebug("jwt rejected", "error", err.Error())
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, nil
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, internal.ErrUnauthenticated("Token expired", internal.WithCause(err))
		}
		return nil, internal.ErrUnauthenticated("Invalid token", internal.WithCause(err))
	}

	auth := internal.NewAuthContext(claims.Subject, claims.Permissions...)
	auth.Extra = keyed.FromMap(claims.Extra)
	r.Set(claimsKey{}, claims)
	return auth, nil
}

// Parse verifies raw and returns its claims.
func (j *JWT) Parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(j.methods),
		jwt.WithLeeway(j.leeway),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	if j.audience != "" {
		opts = append(opts, jwt.WithAudience(j.audience))
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(raw, claims, j.keyFunc, opts...); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrNoSubject
	}
	return claims, nil
}

// Issue signs an HS256 token for subject valid for ttl.
func (j *JWT) Issue(subject string, ttl time.Duration, permissions ...string) (string, error) {
	if len(j.secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := Claims{
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if j.audience != "" {
		claims.Audience = jwt.ClaimStrings{j.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// JWTClaims returns the claims of the token that authenticated r, or nil.
func JWTClaims(r *internal.Request) *Claims {
	return internal.ContextValue[*Claims](r, claimsKey{})
}
