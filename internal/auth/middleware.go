package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/alshifa-health/hms-platform/internal/roles"
	"github.com/alshifa-health/hms-platform/pkg/logging"
)

type contextKey string

const (
	staffUserKey   contextKey = "staffUser"
	patientUserKey contextKey = "patientUser"
)

// StaffUser is the authenticated staff identity stored in request context.
type StaffUser struct {
	StaffID  int64
	RoleID   int64
	RoleName roles.Role
	Email    string
}

// PatientUser is the authenticated patient identity stored in request context.
type PatientUser struct {
	PatientID int64
	Email     string
}

// RoleResolver maps a role id to its display name. A resolver failure leaves
// the role name empty rather than rejecting the request; route gating then
// falls back to the deny-by-default menu rules.
type RoleResolver interface {
	RoleName(ctx context.Context, roleID int64) (string, error)
}

// StaffJWT enforces a staff bearer token and resolves the role name.
func StaffJWT(secret string, resolver RoleResolver, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := ParseStaff(token, secret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			user := StaffUser{StaffID: claims.StaffID, RoleID: claims.RoleID, Email: claims.Email}
			if resolver != nil {
				name, err := resolver.RoleName(r.Context(), claims.RoleID)
				if err != nil {
					logger.Warn("role name lookup failed", "role_id", claims.RoleID, "error", err)
				}
				user.RoleName = roles.Role(name)
			}

			ctx := context.WithValue(r.Context(), staffUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PatientJWT enforces a patient bearer token.
func PatientJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := ParsePatient(token, secret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), patientUserKey, PatientUser{
				PatientID: claims.PatientID,
				Email:     claims.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AnyJWT admits either a staff or a patient bearer token. Patient tokens are
// tried first; the downstream handler decides what each identity may do.
func AnyJWT(staffSecret, patientSecret string, resolver RoleResolver, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			if claims, err := ParsePatient(token, patientSecret); err == nil {
				ctx := context.WithValue(r.Context(), patientUserKey, PatientUser{
					PatientID: claims.PatientID,
					Email:     claims.Email,
				})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			claims, err := ParseStaff(token, staffSecret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			user := StaffUser{StaffID: claims.StaffID, RoleID: claims.RoleID, Email: claims.Email}
			if resolver != nil {
				name, err := resolver.RoleName(r.Context(), claims.RoleID)
				if err != nil {
					logger.Warn("role name lookup failed", "role_id", claims.RoleID, "error", err)
				}
				user.RoleName = roles.Role(name)
			}
			ctx := context.WithValue(r.Context(), staffUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaffFromContext returns the authenticated staff identity if present.
func StaffFromContext(ctx context.Context) (StaffUser, bool) {
	user, ok := ctx.Value(staffUserKey).(StaffUser)
	return user, ok
}

// PatientFromContext returns the authenticated patient identity if present.
func PatientFromContext(ctx context.Context) (PatientUser, bool) {
	user, ok := ctx.Value(patientUserKey).(PatientUser)
	return user, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}
