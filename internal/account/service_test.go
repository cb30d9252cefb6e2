package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockStore struct {
	createFn       func(ctx context.Context, acct *Account) error
	findByEmailFn  func(ctx context.Context, email string) (*Account, error)
	findByIDFn     func(ctx context.Context, id string) (*Account, error)
	listFn         func(ctx context.Context, status Status, limit, offset int) ([]Account, error)
	updateStatusFn func(ctx context.Context, id string, next Status) (bool, error)
	markNotifiedFn func(ctx context.Context, id string) error
}

func (m *mockStore) Create(ctx context.Context, acct *Account) error {
	if m.createFn != nil {
		return m.createFn(ctx, acct)
	}
	return nil
}

func (m *mockStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockStore) FindByID(ctx context.Context, id string) (*Account, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockStore) List(ctx context.Context, status Status, limit, offset int) ([]Account, error) {
	if m.listFn != nil {
		return m.listFn(ctx, status, limit, offset)
	}
	return nil, nil
}

func (m *mockStore) UpdateStatus(ctx context.Context, id string, next Status) (bool, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, next)
	}
	return true, nil
}

func (m *mockStore) MarkNotified(ctx context.Context, id string) error {
	if m.markNotifiedFn != nil {
		return m.markNotifiedFn(ctx, id)
	}
	return nil
}

func testRegistration() Registration {
	return Registration{
		FullName: "Priya Sharma",
		Email:    "priya@example.com",
		Password: "Secret1pass",
		Phone:    "9876543210",
	}
}

func TestRegister_StudentDefaultsToPending(t *testing.T) {
	var created *Account
	store := &mockStore{
		createFn: func(ctx context.Context, acct *Account) error {
			created = acct
			return nil
		},
	}
	svc := NewService(store, bcrypt.MinCost)

	acct, err := svc.Register(context.Background(), testRegistration())
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, RoleStudent, acct.Role)
	assert.Equal(t, StatusPending, acct.Status)
	assert.Equal(t, "priya@example.com", acct.Email)
	assert.NotEqual(t, "Secret1pass", acct.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte("Secret1pass")))
}

func TestRegister_NormalizesEmail(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, bcrypt.MinCost)

	reg := testRegistration()
	reg.Email = "  Priya@Example.COM "
	acct, err := svc.Register(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", acct.Email)
}

func TestRegister_StaffCreatedApproved(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, bcrypt.MinCost)

	reg := testRegistration()
	reg.Role = "faculty"
	acct, err := svc.Register(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, RoleFaculty, acct.Role)
	assert.Equal(t, StatusApproved, acct.Status)
}

func TestRegister_DuplicateEmailNeverWrites(t *testing.T) {
	createCalled := false
	store := &mockStore{
		findByEmailFn: func(ctx context.Context, email string) (*Account, error) {
			return &Account{ID: "existing", Email: email}, nil
		},
		createFn: func(ctx context.Context, acct *Account) error {
			createCalled = true
			return nil
		},
	}
	svc := NewService(store, bcrypt.MinCost)

	_, err := svc.Register(context.Background(), testRegistration())
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.False(t, createCalled)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthenticate_Success(t *testing.T) {
	store := &mockStore{
		findByEmailFn: func(ctx context.Context, email string) (*Account, error) {
			return &Account{
				ID:           "acct-1",
				Email:        email,
				PasswordHash: hashed(t, "Secret1pass"),
				Role:         RoleStudent,
				Status:       StatusPending,
			}, nil
		},
	}
	svc := NewService(store, bcrypt.MinCost)

	acct, err := svc.Authenticate(context.Background(), "priya@example.com", "Secret1pass")
	require.NoError(t, err)
	// A fresh student logs in before review; the summary must say so.
	assert.Equal(t, StatusPending, acct.Summary().Status)
}

func TestAuthenticate_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	store := &mockStore{
		findByEmailFn: func(ctx context.Context, email string) (*Account, error) {
			if email == "known@example.com" {
				return &Account{ID: "acct-1", Email: email, PasswordHash: hashed(t, "Right1pass")}, nil
			}
			return nil, nil
		},
	}
	svc := NewService(store, bcrypt.MinCost)

	_, errUnknown := svc.Authenticate(context.Background(), "ghost@example.com", "whatever")
	_, errWrongPw := svc.Authenticate(context.Background(), "known@example.com", "Wrong1pass")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPw)
}

func pendingStudent(id string) *Account {
	return &Account{ID: id, Role: RoleStudent, Status: StatusPending}
}

func TestSetStatus_ApproveSucceedsOnce(t *testing.T) {
	current := pendingStudent("acct-1")
	store := &mockStore{
		findByIDFn: func(ctx context.Context, id string) (*Account, error) {
			cp := *current
			return &cp, nil
		},
		updateStatusFn: func(ctx context.Context, id string, next Status) (bool, error) {
			if current.Status != StatusPending {
				return false, nil
			}
			current.Status = next
			return true, nil
		},
	}
	svc := NewService(store, bcrypt.MinCost)

	acct, err := svc.SetStatus(context.Background(), "acct-1", StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, acct.Status)

	// Terminal: a second review fails no matter the requested target.
	_, err = svc.SetStatus(context.Background(), "acct-1", StatusApproved)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.SetStatus(context.Background(), "acct-1", StatusRejected)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSetStatus_RejectsBadTargetWithoutStoreAccess(t *testing.T) {
	findCalled := false
	store := &mockStore{
		findByIDFn: func(ctx context.Context, id string) (*Account, error) {
			findCalled = true
			return pendingStudent(id), nil
		},
	}
	svc := NewService(store, bcrypt.MinCost)

	_, err := svc.SetStatus(context.Background(), "acct-1", StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.False(t, findCalled)
}

func TestSetStatus_UnknownAccount(t *testing.T) {
	svc := NewService(&mockStore{}, bcrypt.MinCost)
	_, err := svc.SetStatus(context.Background(), "missing", StatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatus_NonStudent(t *testing.T) {
	store := &mockStore{
		findByIDFn: func(ctx context.Context, id string) (*Account, error) {
			return &Account{ID: id, Role: RoleFaculty, Status: StatusApproved}, nil
		},
	}
	svc := NewService(store, bcrypt.MinCost)

	_, err := svc.SetStatus(context.Background(), "acct-2", StatusApproved)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSetStatus_LosesCompareAndSetRace(t *testing.T) {
	store := &mockStore{
		findByIDFn: func(ctx context.Context, id string) (*Account, error) {
			return pendingStudent(id), nil
		},
		updateStatusFn: func(ctx context.Context, id string, next Status) (bool, error) {
			// Another review landed between the read and the update.
			return false, nil
		},
	}
	svc := NewService(store, bcrypt.MinCost)

	_, err := svc.SetStatus(context.Background(), "acct-1", StatusRejected)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSetStatus_PropagatesStoreError(t *testing.T) {
	boom := errors.New("db down")
	store := &mockStore{
		findByIDFn: func(ctx context.Context, id string) (*Account, error) {
			return nil, boom
		},
	}
	svc := NewService(store, bcrypt.MinCost)

	_, err := svc.SetStatus(context.Background(), "acct-1", StatusApproved)
	assert.ErrorIs(t, err, boom)
}
