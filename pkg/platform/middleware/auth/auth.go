package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"kycgate/internal/apitoken"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/httputil"
	"kycgate/pkg/requestcontext"
)

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	Validate(tokenString string) (*apitoken.Claims, error)
}

var (
	errNoToken  = dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header")
	errBadToken = dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")
)

// RequireBearer admits requests whose bearer token validates and grants
// scope, and records the token subject in the request context. A nil
// validator disables the check.
func RequireBearer(validator TokenValidator, scope string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			reject := func(err error, msg string, attrs ...any) {
				attrs = append(attrs, "request_id", requestcontext.RequestID(ctx))
				logger.WarnContext(ctx, msg, attrs...)
				httputil.WriteError(w, err)
			}

			token := bearerToken(r)
			if token == "" {
				reject(errNoToken, "rejected request without bearer token")
				return
			}
			claims, err := validator.Validate(token)
			if err != nil {
				reject(errBadToken, "rejected invalid bearer token", "error", err)
				return
			}
			if scope != "" && !claims.HasScope(scope) {
				reject(dErrors.New(dErrors.CodeForbidden, "Token does not grant "+scope),
					"rejected token without scope", "subject", claims.Subject, "scope", scope)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithSubject(ctx, claims.Subject)))
		})
	}
}

func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
