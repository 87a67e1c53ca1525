package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
	obsctx "github.com/fairyhunter13/jobtrackr/internal/observability"
	"github.com/fairyhunter13/jobtrackr/internal/service/auth"
)

// TokenParser validates an access token and returns its claims.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

var errMissingBearer = errors.New("missing bearer token")

// BearerAuth rejects requests without a valid access token and tags the
// request context with the authenticated user id.
func BearerAuth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeProblem(w, r, errors.Join(domain.ErrUnauthorized, errMissingBearer))
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				writeProblem(w, r, err)
				return
			}
			ctx := obsctx.ContextWithUserID(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
