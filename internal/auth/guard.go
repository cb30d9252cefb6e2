package auth

import "admissions/internal/account"

// Reason explains a guard denial.
type Reason string

const (
	ReasonUnauthenticated  Reason = "Unauthenticated"
	ReasonRoleMismatch     Reason = "RoleMismatch"
	ReasonApprovalRequired Reason = "ApprovalRequired"
)

// Requirement declares what a protected resource demands of the caller.
// Zero-value Role means any role; RequireApproval gates students on an
// approved application.
type Requirement struct {
	Role            account.Role
	RequireApproval bool
}

// Decision is the guard's allow/deny outcome. Detail carries the approval
// sub-state (pending or rejected) for user messaging.
type Decision struct {
	Allowed bool
	Reason  Reason
	Detail  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(r Reason, detail string) Decision { return Decision{Reason: r, Detail: detail} }

// Authorize runs the three ordered checks: presence, role, approval. Each
// failing check is terminal, so an unauthenticated caller is always reported
// as Unauthenticated even when a role requirement would also fail.
func Authorize(claims *Claims, summary *account.IdentitySummary, req Requirement) Decision {
	if claims == nil || summary == nil {
		return deny(ReasonUnauthenticated, "")
	}
	if req.Role != "" && summary.Role != req.Role {
		return deny(ReasonRoleMismatch, "")
	}
	if req.RequireApproval && summary.Role == account.RoleStudent && summary.Status != account.StatusApproved {
		return deny(ReasonApprovalRequired, string(summary.Status))
	}
	return allow()
}
