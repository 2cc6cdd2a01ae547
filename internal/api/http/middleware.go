package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Marceldinga/TheYoungShallGrow/internal/config"
	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/security"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// MemberLookup resolves the member behind a token.
type MemberLookup interface {
	Get(ctx context.Context, id int32) (*domain.Member, error)
}

// AuthMiddleware enforces the security level configured for each named route
type AuthMiddleware struct {
	tokenManager security.TokenManager
	members      MemberLookup
	isAdminEmail func(email string) bool
}

func NewAuthMiddleware(tm security.TokenManager, members MemberLookup, isAdminEmail func(string) bool) *AuthMiddleware {
	if isAdminEmail == nil {
		isAdminEmail = func(string) bool { return false }
	}
	return &AuthMiddleware{tokenManager: tm, members: members, isAdminEmail: isAdminEmail}
}

func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routeName := ""
		if route := mux.CurrentRoute(r); route != nil {
			routeName = route.GetName()
		}
		level := config.GetSecurityLevel(routeName)

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := extractToken(r)
		if !ok {
			writeFailure(w, http.StatusUnauthorized, ruleUnauthenticated, "authorization token is not provided")
			return
		}

		claims, err := a.tokenManager.ValidateToken(token)
		if err != nil {
			writeFailure(w, http.StatusUnauthorized, ruleUnauthenticated, "invalid token: "+err.Error())
			return
		}

		p := Principal{
			MemberID: claims.MemberID,
			Email:    claims.Email,
			Admin:    claims.HasRole(security.RoleAdmin) || a.isAdminEmail(claims.Email),
		}

		if err := a.checkSecurityLevel(r.Context(), level, p); err != nil {
			if errors.Is(err, domain.ErrForbidden) {
				writeFailure(w, http.StatusForbidden, ruleForbidden, err.Error())
				return
			}
			writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

func (a *AuthMiddleware) checkSecurityLevel(ctx context.Context, level config.SecurityLevel, p Principal) error {
	if p.Admin {
		return nil
	}
	if level == config.SecurityAdmin {
		return forbidden("admin access required")
	}

	if p.MemberID <= 0 {
		return forbidden("token is not bound to a member")
	}
	if _, err := a.members.Get(ctx, p.MemberID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return forbidden("member no longer exists")
		}
		return err
	}
	return nil
}

func forbidden(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrForbidden, msg)
}

func extractToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	// Remove Bearer prefix if present
	if len(header) > 7 && strings.ToUpper(header[0:7]) == "BEARER " {
		header = header[7:]
	}
	header = strings.TrimSpace(header)
	return header, header != ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger tags each request with an id and logs its outcome
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.InfoContext(ctx, "HTTP request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
