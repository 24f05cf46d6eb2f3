package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/model"
)

// contextKey is an unexported type used for context keys in this package,
// so no other package can read or shadow the values stored here.
type contextKey string

const (
	identityKey contextKey = "identity"
	userKey     contextKey = "user"
)

// UserResolver turns a verified identity into the stored user it names.
// service.UserService implements it.
type UserResolver interface {
	ResolveIdentity(ctx context.Context, id Identity) (*model.User, error)
}

// ErrorWriter renders an error response. Passing it in keeps this package
// free of the HTTP response format.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// RequireUser is a middleware that enforces authentication on protected routes.
//
// It reads the bearer token from the Authorization header, verifies it,
// resolves the subject to a stored user and puts both in the request
// context. Any failure is handed to writeErr and the chain stops.
func RequireUser(tokens *TokenService, users UserResolver, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticate(r, tokens, users)
			if err != nil {
				writeErr(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the caller if a valid token is present but never
// blocks the request. A missing, invalid or unresolvable token leaves the
// request anonymous.
func OptionalAuth(tokens *TokenService, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ctx, err := authenticate(r, tokens, users); err == nil {
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns the verified identity of the caller.
// Returns (Identity{}, false) if the request is anonymous.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.SubjectID != ""
}

// UserFromContext returns the resolved user behind the caller's token.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// WithUser returns a context carrying user as the authenticated caller.
func WithUser(ctx context.Context, user *model.User) context.Context {
	ctx = context.WithValue(ctx, identityKey, Identity{SubjectID: user.ID, Username: user.Username})
	return context.WithValue(ctx, userKey, user)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively. It returns "" when the
// header is absent or uses another scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func authenticate(r *http.Request, tokens *TokenService, users UserResolver) (context.Context, error) {
	identity, err := tokens.Verify(BearerToken(r))
	if err != nil {
		return nil, err
	}

	user, err := users.ResolveIdentity(r.Context(), identity)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthenticated(ErrUnknownUser, "invalid user")
	}

	ctx := context.WithValue(r.Context(), identityKey, identity)
	return context.WithValue(ctx, userKey, user), nil
}
