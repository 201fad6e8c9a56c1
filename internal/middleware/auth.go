package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"jersey-stock-api/pkg/apierror"
	"jersey-stock-api/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// ActorKey is the context key for the authenticated user's email.
const ActorKey contextKey = "actor"

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Secret verifies HS256 session tokens. Empty disables authentication.
	Secret string
	// Audience, when set, must appear in the token's aud claim.
	Audience string
	// AllowedEmailDomains restricts access by the email claim's domain.
	// Empty allows every domain.
	AllowedEmailDomains []string
}

// Claims are the session token claims the API relies on.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

var errMissingEmail = errors.New("token has no email claim")

// NewAuthMiddleware verifies the bearer session token issued by the hosted
// auth service and stores the caller's email as the request actor.
func NewAuthMiddleware(cfg AuthConfig, log *logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("middleware", "auth")

	allowed := make(map[string]struct{}, len(cfg.AllowedEmailDomains))
	for _, d := range cfg.AllowedEmailDomains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d != "" {
			allowed[d] = struct{}{}
		}
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	parser := jwt.NewParser(opts...)

	return func(next http.Handler) http.Handler {
		if cfg.Secret == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeError(w, apierror.Unauthorized("Authentication required. Use a Bearer session token."))
				return
			}

			email, err := verify(parser, cfg.Secret, strings.TrimSpace(token))
			if err != nil {
				RequestLogger(r.Context(), log).Debug("token rejected", "error", err)
				writeError(w, apierror.Unauthorized("Invalid or expired token"))
				return
			}

			if len(allowed) > 0 {
				if _, ok := allowed[emailDomain(email)]; !ok {
					writeError(w, apierror.Forbidden("Email domain is not allowed"))
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), email)))
		})
	}
}

func verify(parser *jwt.Parser, secret, tokenString string) (string, error) {
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return "", errMissingEmail
	}
	return email, nil
}

func emailDomain(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return ""
	}
	return email[at+1:]
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}

// WithActor stores the actor email in ctx.
func WithActor(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, ActorKey, email)
}

// ActorFromContext returns the authenticated email, or nil for anonymous
// requests.
func ActorFromContext(ctx context.Context) *string {
	if email, ok := ctx.Value(ActorKey).(string); ok && email != "" {
		return &email
	}
	return nil
}
