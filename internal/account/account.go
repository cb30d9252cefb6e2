package account

import (
	"errors"
	"strings"
	"time"
)

// Role classifies an account. Unknown values never reach business logic;
// they are rejected by ParseRole or the registration validator first.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
	RoleFaculty Role = "faculty"
)

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleAdmin, RoleFaculty:
		return Role(s), nil
	}
	return "", errors.New("unknown role: " + s)
}

// Status is the approval state of a student application.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus converts a raw string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	}
	return "", errors.New("unknown status: " + s)
}

// Account is a registered identity with credentials, role and approval state.
// Phone-like fields stay strings to preserve leading zeros.
type Account struct {
	ID              string     `json:"id"`
	FullName        string     `json:"full_name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	Phone           string     `json:"phone"`
	Role            Role       `json:"role"`
	Status          Status     `json:"status"`
	FatherPhone     *string    `json:"father_phone,omitempty"`
	Pincode         *string    `json:"pincode,omitempty"`
	AadhaarNumber   *string    `json:"aadhaar_number,omitempty"`
	Income          *float64   `json:"income,omitempty"`
	JEEMainRank     *int       `json:"jee_main_rank,omitempty"`
	JEEAdvancedRank *int       `json:"jee_advanced_rank,omitempty"`
	Category        *string    `json:"category,omitempty"`
	Degree          *string    `json:"degree,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	NotifiedAt      *time.Time `json:"notified_at,omitempty"`
}

// IdentitySummary is the non-secret projection of an Account returned to
// clients after login and cached for guard checks.
type IdentitySummary struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Status   Status `json:"status"`
}

// Summary projects the account into its client-visible form.
func (a Account) Summary() IdentitySummary {
	return IdentitySummary{
		ID:       a.ID,
		FullName: a.FullName,
		Email:    a.Email,
		Role:     a.Role,
		Status:   a.Status,
	}
}

// NormalizeEmail canonicalizes an email for storage and lookup.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Registration is a raw account submission as received over the wire.
// Optional student fields are pointers or empty strings so "absent" and
// "present but malformed" stay distinguishable.
type Registration struct {
	FullName        string   `json:"fullName"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	Phone           string   `json:"phone"`
	Role            string   `json:"role"`
	FatherPhone     string   `json:"fatherPhone"`
	Pincode         string   `json:"pincode"`
	AadhaarNumber   string   `json:"aadhaarNumber"`
	Income          *float64 `json:"income"`
	JEEMainRank     *int     `json:"jeeMainRank"`
	JEEAdvancedRank *int     `json:"jeeAdvancedRank"`
	Category        string   `json:"category"`
	Degree          string   `json:"degree"`
}

// Normalize trims whitespace and canonicalizes the email so that
// whitespace-only required fields count as absent during validation.
func (r *Registration) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = NormalizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Role = strings.TrimSpace(r.Role)
	r.FatherPhone = strings.TrimSpace(r.FatherPhone)
	r.Pincode = strings.TrimSpace(r.Pincode)
	r.AadhaarNumber = strings.TrimSpace(r.AadhaarNumber)
	r.Category = strings.TrimSpace(r.Category)
	r.Degree = strings.TrimSpace(r.Degree)
}
