// Package validate holds the field-rule catalogue for account submissions.
// Rules are a data-driven table evaluated uniformly; the aggregator never
// short-circuits, so a response always reports every failing field.
package validate

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"admissions/internal/account"
)

var (
	tenDigits    = regexp.MustCompile(`^[0-9]{10}$`)
	sixDigits    = regexp.MustCompile(`^[0-9]{6}$`)
	twelveDigits = regexp.MustCompile(`^[0-9]{12}$`)
	hasLower     = regexp.MustCompile(`[a-z]`)
	hasUpper     = regexp.MustCompile(`[A-Z]`)
	hasDigit     = regexp.MustCompile(`[0-9]`)
)

// FieldError reports one failing field. Values are echoed back so clients
// can highlight the offending input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

// Report is the aggregated outcome of validating one submission.
type Report struct {
	Errors []FieldError `json:"errors"`
}

// Passed reports whether every field rule held.
func (r Report) Passed() bool { return len(r.Errors) == 0 }

// fieldCheck binds a field name and its submitted value to the rules that
// govern it. Optional fields simply omit Required: ozzo skips format rules
// on blank values, so optionality waives presence but never format.
type fieldCheck struct {
	field string
	value any
	rules []validation.Rule
}

func run(checks []fieldCheck) Report {
	var report Report
	for _, c := range checks {
		if err := validation.Validate(c.value, c.rules...); err != nil {
			report.Errors = append(report.Errors, FieldError{Field: c.field, Message: err.Error(), Value: c.value})
		}
	}
	return report
}

// CheckRegistration validates a normalized registration submission against
// the full rule catalogue. Pure: no store access, no side effects.
func CheckRegistration(reg *account.Registration) Report {
	return run([]fieldCheck{
		{"fullName", reg.FullName, []validation.Rule{
			validation.Required.Error("full name is required"),
			validation.Length(2, 100).Error("full name must be between 2 and 100 characters"),
		}},
		{"email", reg.Email, []validation.Rule{
			validation.Required.Error("email is required"),
			is.Email.Error("email must be a valid email address"),
		}},
		{"password", reg.Password, []validation.Rule{
			validation.Required.Error("password is required"),
			validation.Length(6, 0).Error("password must be at least 6 characters"),
			validation.Match(hasLower).Error("password must contain a lowercase letter"),
			validation.Match(hasUpper).Error("password must contain an uppercase letter"),
			validation.Match(hasDigit).Error("password must contain a digit"),
		}},
		{"phone", reg.Phone, []validation.Rule{
			validation.Required.Error("phone is required"),
			validation.Match(tenDigits).Error("phone must be exactly 10 digits"),
		}},
		{"role", reg.Role, []validation.Rule{
			validation.In("student", "admin", "faculty").Error("role must be one of student, admin, faculty"),
		}},
		{"fatherPhone", reg.FatherPhone, []validation.Rule{
			validation.Match(tenDigits).Error("father's phone must be exactly 10 digits"),
		}},
		{"pincode", reg.Pincode, []validation.Rule{
			validation.Match(sixDigits).Error("pincode must be exactly 6 digits"),
		}},
		{"aadhaarNumber", reg.AadhaarNumber, []validation.Rule{
			validation.Match(twelveDigits).Error("aadhaar number must be exactly 12 digits"),
		}},
		{"income", reg.Income, []validation.Rule{
			validation.By(nonNegative("income must be zero or greater")),
		}},
		{"jeeMainRank", reg.JEEMainRank, []validation.Rule{
			validation.By(minRank("JEE Main rank must be 1 or greater")),
		}},
		{"jeeAdvancedRank", reg.JEEAdvancedRank, []validation.Rule{
			validation.By(minRank("JEE Advanced rank must be 1 or greater")),
		}},
		{"category", reg.Category, []validation.Rule{
			validation.In("General", "OBC", "SC", "ST", "EWS").Error("category must be one of General, OBC, SC, ST, EWS"),
		}},
		{"degree", reg.Degree, []validation.Rule{
			validation.In("B.Tech", "M.Tech", "PhD", "MBA", "MCA").Error("degree must be one of B.Tech, M.Tech, PhD, MBA, MCA"),
		}},
	})
}

// CheckLogin validates login input shape only. Password format beyond
// presence is enforced at registration, not re-checked here.
func CheckLogin(email, password string) Report {
	return run([]fieldCheck{
		{"email", account.NormalizeEmail(email), []validation.Rule{
			validation.Required.Error("email is required"),
			is.Email.Error("email must be a valid email address"),
		}},
		{"password", password, []validation.Rule{
			validation.Required.Error("password is required"),
		}},
	})
}

// CheckStatusUpdate validates the admin review payload.
func CheckStatusUpdate(status string) Report {
	return run([]fieldCheck{
		{"status", status, []validation.Rule{
			validation.Required.Error("status is required"),
			validation.In("pending", "approved", "rejected").Error("status must be one of pending, approved, rejected"),
		}},
	})
}

// nonNegative validates an optional numeric field. A nil pointer is absent
// and passes; a present value must be >= 0. ozzo threshold rules treat zero
// as empty and skip it, hence the custom rule.
func nonNegative(msg string) validation.RuleFunc {
	return func(value any) error {
		v, ok := value.(*float64)
		if !ok || v == nil {
			return nil
		}
		if *v < 0 {
			return errors.New(msg)
		}
		return nil
	}
}

// minRank validates an optional rank: absent passes, present must be >= 1
// (an explicit 0 fails, which ozzo's Min would silently skip).
func minRank(msg string) validation.RuleFunc {
	return func(value any) error {
		v, ok := value.(*int)
		if !ok || v == nil {
			return nil
		}
		if *v < 1 {
			return errors.New(msg)
		}
		return nil
	}
}
