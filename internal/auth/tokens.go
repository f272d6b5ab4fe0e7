// Package auth issues and verifies the HMAC-signed session tokens carried by
// staff and patient clients, and provides the middleware that gates routes on
// them. Roles are asserted server-side at login; the client only maps the
// issued role name onto routes and menus.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for malformed, expired or mis-signed tokens.
var ErrInvalidToken = errors.New("auth: invalid token")

// StaffClaims are embedded in staff session tokens.
type StaffClaims struct {
	StaffID int64  `json:"staff_id"`
	RoleID  int64  `json:"role_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// PatientClaims are embedded in patient session tokens.
type PatientClaims struct {
	PatientID int64  `json:"patient_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs session tokens.
type Issuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewIssuer constructs a token issuer. A zero expiry defaults to 7 days.
func NewIssuer(secret string, expiry time.Duration) *Issuer {
	if expiry <= 0 {
		expiry = 168 * time.Hour
	}
	return &Issuer{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// WithClock fixes the issuer clock; tests use this.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// IssueStaff signs a staff session token.
func (i *Issuer) IssueStaff(staffID, roleID int64, email string) (string, error) {
	now := i.now()
	claims := StaffClaims{
		StaffID: staffID,
		RoleID:  roleID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// IssuePatient signs a patient session token.
func (i *Issuer) IssuePatient(patientID int64, email string) (string, error) {
	now := i.now()
	claims := PatientClaims{
		PatientID: patientID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// ParseStaff verifies a staff token and returns its claims.
func ParseStaff(tokenString, secret string) (*StaffClaims, error) {
	claims := &StaffClaims{}
	if err := parseInto(tokenString, secret, claims); err != nil {
		return nil, err
	}
	if claims.StaffID <= 0 || claims.RoleID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParsePatient verifies a patient token and returns its claims.
func ParsePatient(tokenString, secret string) (*PatientClaims, error) {
	claims := &PatientClaims{}
	if err := parseInto(tokenString, secret, claims); err != nil {
		return nil, err
	}
	if claims.PatientID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func parseInto(tokenString, secret string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
