package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions/internal/account"
)

func validRegistration() account.Registration {
	return account.Registration{
		FullName: "Priya Sharma",
		Email:    "priya@example.com",
		Password: "Secret1pass",
		Phone:    "9876543210",
	}
}

func fields(r Report) []string {
	var out []string
	for _, e := range r.Errors {
		out = append(out, e.Field)
	}
	return out
}

func TestCheckRegistration_Valid(t *testing.T) {
	reg := validRegistration()
	report := CheckRegistration(&reg)
	assert.True(t, report.Passed(), "unexpected errors: %v", report.Errors)
}

func TestCheckRegistration_CollectsEveryFailingField(t *testing.T) {
	reg := validRegistration()
	reg.FullName = "A"          // too short
	reg.Email = "not-an-email"  // malformed
	reg.Phone = "123456789"     // 9 digits
	report := CheckRegistration(&reg)

	require.Len(t, report.Errors, 3)
	assert.Equal(t, []string{"fullName", "email", "phone"}, fields(report))
}

func TestCheckRegistration_PasswordMissingUppercaseOnly(t *testing.T) {
	// Boundary: a 2-character name passes, so "abc123" is the only failure.
	reg := account.Registration{
		FullName: "Al",
		Email:    "a@b.com",
		Password: "abc123",
		Phone:    "1234567890",
	}
	report := CheckRegistration(&reg)

	require.Len(t, report.Errors, 1)
	assert.Equal(t, "password", report.Errors[0].Field)
	assert.Contains(t, report.Errors[0].Message, "uppercase")
}

func TestCheckRegistration_PasswordRules(t *testing.T) {
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"valid", "Abcde1", true},
		{"too short", "Ab1", false},
		{"no lowercase", "ABCDE1", false},
		{"no uppercase", "abcde1", false},
		{"no digit", "Abcdef", false},
		{"missing", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := validRegistration()
			reg.Password = tc.password
			report := CheckRegistration(&reg)
			if tc.ok {
				assert.True(t, report.Passed(), "errors: %v", report.Errors)
			} else {
				require.Len(t, report.Errors, 1)
				assert.Equal(t, "password", report.Errors[0].Field)
			}
		})
	}
}

func TestCheckRegistration_WhitespaceOnlyNameCountsAsAbsent(t *testing.T) {
	reg := validRegistration()
	reg.FullName = "   "
	reg.Normalize()
	report := CheckRegistration(&reg)

	require.Len(t, report.Errors, 1)
	assert.Equal(t, "fullName", report.Errors[0].Field)
	assert.Contains(t, report.Errors[0].Message, "required")
}

func TestCheckRegistration_OptionalFieldsAbsentPass(t *testing.T) {
	reg := validRegistration()
	report := CheckRegistration(&reg)
	assert.True(t, report.Passed())
}

func TestCheckRegistration_OptionalFieldsPresentMustBeWellFormed(t *testing.T) {
	income := -100.0
	rank := 0
	reg := validRegistration()
	reg.Role = "teacher"
	reg.FatherPhone = "12345"
	reg.Pincode = "12a456"
	reg.AadhaarNumber = "1234"
	reg.Income = &income
	reg.JEEMainRank = &rank
	reg.Category = "Other"
	reg.Degree = "BSc"
	report := CheckRegistration(&reg)

	assert.Equal(t, []string{
		"role", "fatherPhone", "pincode", "aadhaarNumber",
		"income", "jeeMainRank", "category", "degree",
	}, fields(report))
}

func TestCheckRegistration_OptionalFieldsWellFormedPass(t *testing.T) {
	income := 450000.0
	mainRank, advRank := 1523, 812
	reg := validRegistration()
	reg.Role = "student"
	reg.FatherPhone = "9123456780"
	reg.Pincode = "560012"
	reg.AadhaarNumber = "123412341234"
	reg.Income = &income
	reg.JEEMainRank = &mainRank
	reg.JEEAdvancedRank = &advRank
	reg.Category = "OBC"
	reg.Degree = "B.Tech"
	report := CheckRegistration(&reg)
	assert.True(t, report.Passed(), "errors: %v", report.Errors)
}

func TestCheckLogin(t *testing.T) {
	assert.True(t, CheckLogin("user@example.com", "whatever").Passed())

	report := CheckLogin("", "")
	assert.Equal(t, []string{"email", "password"}, fields(report))

	report = CheckLogin("nonsense", "pw")
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "email", report.Errors[0].Field)
}

func TestCheckStatusUpdate(t *testing.T) {
	assert.True(t, CheckStatusUpdate("approved").Passed())
	assert.True(t, CheckStatusUpdate("rejected").Passed())
	assert.True(t, CheckStatusUpdate("pending").Passed())

	assert.False(t, CheckStatusUpdate("").Passed())
	assert.False(t, CheckStatusUpdate("archived").Passed())
}
