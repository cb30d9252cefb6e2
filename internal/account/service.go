package account

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors surfaced to handlers; they map 1:1 onto HTTP responses.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrNotFound           = errors.New("account not found")
)

// Store is the identity-store contract the service needs. *Repository
// implements it against Postgres; tests substitute func-field mocks.
type Store interface {
	Create(ctx context.Context, acct *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	List(ctx context.Context, status Status, limit, offset int) ([]Account, error)
	UpdateStatus(ctx context.Context, id string, next Status) (bool, error)
	MarkNotified(ctx context.Context, id string) error
}

// Service coordinates registration, authentication and status reviews.
type Service struct {
	store      Store
	bcryptCost int
}

// NewService creates a service backed by an identity store.
func NewService(store Store, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{store: store, bcryptCost: bcryptCost}
}

// Register creates an account from an already-validated submission.
// Students start pending; staff accounts are created approved so the
// approval gate is vacuous for them.
func (s *Service) Register(ctx context.Context, reg Registration) (*Account, error) {
	role := RoleStudent
	if reg.Role != "" {
		parsed, err := ParseRole(reg.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	email := NormalizeEmail(reg.Email)
	if existing, err := s.store.FindByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	status := StatusApproved
	if role == RoleStudent {
		status = StatusPending
	}

	acct := &Account{
		FullName:        reg.FullName,
		Email:           email,
		PasswordHash:    string(hash),
		Phone:           reg.Phone,
		Role:            role,
		Status:          status,
		FatherPhone:     optional(reg.FatherPhone),
		Pincode:         optional(reg.Pincode),
		AadhaarNumber:   optional(reg.AadhaarNumber),
		Income:          reg.Income,
		JEEMainRank:     reg.JEEMainRank,
		JEEAdvancedRank: reg.JEEAdvancedRank,
		Category:        optional(reg.Category),
		Degree:          optional(reg.Degree),
	}
	if err := s.store.Create(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// Authenticate verifies credentials against the stored hash. Unknown email
// and wrong password produce the same ErrInvalidCredentials so the response
// reveals nothing about which part failed. Read-only.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	acct, err := s.store.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return acct, nil
}

// SetStatus moves a pending student application to approved or rejected.
// Approved and rejected are terminal; the underlying update is a
// compare-and-set, so of two concurrent reviews exactly one succeeds.
func (s *Service) SetStatus(ctx context.Context, id string, next Status) (*Account, error) {
	if next != StatusApproved && next != StatusRejected {
		return nil, ErrInvalidTransition
	}
	acct, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrNotFound
	}
	if acct.Role != RoleStudent || acct.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	applied, err := s.store.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost a concurrent review between the read and the update.
		return nil, ErrInvalidTransition
	}
	acct.Status = next
	return acct, nil
}

// List returns accounts for the admin review screens.
func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]Account, error) {
	return s.store.List(ctx, status, limit, offset)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
