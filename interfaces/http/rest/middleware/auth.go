package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/cpsc/analytics/pkg/auth"
	apperrors "github.com/cpsc/analytics/pkg/errors"
)

const ipRequestsPerMinute = 100

// Authenticate validates bearer tokens on direct HTTP deployments. Both
// limits apply: per-IP before the token is even parsed, per-user after,
// so a flood of bad tokens is cut off at the IP level. The validator and
// user limiter come from the DI container so the Lambda and API entries
// share one configuration.
func Authenticate(validator *auth.JWTValidator, userLimiter *auth.UserRateLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	ipLimiter := auth.NewIPRateLimiter(ipRequestsPerMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowIP(ipLimiter, r, logger) {
				writeDomainError(w, apperrors.ErrRateLimitExceeded)
				return
			}

			token := extractToken(r)
			if token == "" {
				writeUnauthorized(w, "Missing authentication token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Invalid token",
					zap.Error(err),
					zap.String("path", r.URL.Path),
				)
				switch err {
				case auth.ErrExpiredToken:
					writeUnauthorized(w, "Token has expired")
				case auth.ErrInvalidSignature:
					writeUnauthorized(w, "Invalid token signature")
				default:
					writeUnauthorized(w, "Invalid token")
				}
				return
			}

			if allowed, _ := userLimiter.Allow(r.Context(), claims.UserID); !allowed {
				writeDomainError(w, apperrors.ErrRateLimitExceeded)
				return
			}

			serveAs(next, w, r, &auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
				Roles:  claims.Roles,
			})
		})
	}
}

// AuthenticateForLambda trusts the user identity headers that the Lambda
// entry derives from the API Gateway JWT authorizer. API Gateway has
// already validated the Cognito token by the time the request reaches us.
func AuthenticateForLambda(userLimiter *auth.UserRateLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	ipLimiter := auth.NewIPRateLimiter(ipRequestsPerMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowIP(ipLimiter, r, logger) {
				writeDomainError(w, apperrors.ErrRateLimitExceeded)
				return
			}

			if r.Header.Get("X-API-Gateway-Authorized") != "true" {
				writeUnauthorized(w, "Request not authorized by API Gateway")
				return
			}

			userID := r.Header.Get("X-User-ID")
			if userID == "" {
				writeDomainError(w, apperrors.ErrMissingUserIdentity)
				return
			}

			if allowed, _ := userLimiter.Allow(r.Context(), userID); !allowed {
				writeDomainError(w, apperrors.ErrRateLimitExceeded)
				return
			}

			roles := []string{"authenticated"}
			if header := r.Header.Get("X-User-Roles"); header != "" {
				roles = strings.Split(header, ",")
			}

			serveAs(next, w, r, &auth.UserContext{
				UserID: userID,
				Email:  r.Header.Get("X-User-Email"),
				Roles:  roles,
			})
		})
	}
}

// RequireRole gates a route on the authenticated user holding any one of
// the given roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.GetUserFromContext(r.Context())
			if err != nil {
				writeDomainError(w, apperrors.ErrMissingUserIdentity)
				return
			}

			for _, required := range roles {
				for _, role := range user.Roles {
					if role == required {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			writeDomainError(w, apperrors.NewDomainError(
				apperrors.DomainAuthenticationError,
				"INSUFFICIENT_PERMISSIONS",
				"User lacks a required role",
			).WithDetail("required_roles", roles))
		})
	}
}

// serveAs runs next with the user identity installed in the context.
// The plain "userID" value is what the query and command layers read.
func serveAs(next http.Handler, w http.ResponseWriter, r *http.Request, user *auth.UserContext) {
	ctx := auth.SetUserInContext(r.Context(), user)
	ctx = context.WithValue(ctx, "userID", user.UserID)
	next.ServeHTTP(w, r.WithContext(ctx))
}

func allowIP(limiter *auth.IPRateLimiter, r *http.Request, logger *zap.Logger) bool {
	allowed, err := limiter.Allow(r.Context(), getClientIP(r))
	if err != nil {
		logger.Error("Rate limiter error", zap.Error(err))
		return true
	}
	return allowed
}

// extractToken looks for the token in the Authorization header first,
// then the auth cookie, then the query string.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return header
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}

	return r.URL.Query().Get("token")
}

// getClientIP resolves the caller address behind proxies. RealIP
// middleware normally rewrites RemoteAddr already; the header checks
// cover direct use outside the chi chain.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeDomainError(w, apperrors.NewDomainError(
		apperrors.DomainAuthenticationError,
		"UNAUTHORIZED",
		message,
	))
}

func writeDomainError(w http.ResponseWriter, err *apperrors.DomainError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(apperrors.ErrorResponse{
		Error:     true,
		Type:      string(err.Type),
		Code:      err.Code,
		Message:   err.Message,
		Details:   err.Details,
		Retryable: err.Retryable,
	})
}
