package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

const accountColumns = `id, full_name, email, password_hash, phone, role, status,
		father_phone, pincode, aadhaar_number, income, jee_main_rank, jee_advanced_rank,
		category, degree, created_at, reviewed_at, notified_at`

// Repository persists accounts in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account. A colliding normalized email maps to
// ErrDuplicateEmail via the unique index, so a losing concurrent insert
// never half-persists.
func (r *Repository) Create(ctx context.Context, acct *Account) error {
	if acct.ID == "" {
		acct.ID = uuid.NewString()
	}
	acct.Email = NormalizeEmail(acct.Email)
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (id, full_name, email, password_hash, phone, role, status,
			father_phone, pincode, aadhaar_number, income, jee_main_rank, jee_advanced_rank,
			category, degree)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at
	`, acct.ID, acct.FullName, acct.Email, acct.PasswordHash, acct.Phone, acct.Role, acct.Status,
		acct.FatherPhone, acct.Pincode, acct.AadhaarNumber, acct.Income, acct.JEEMainRank,
		acct.JEEAdvancedRank, acct.Category, acct.Degree)
	if err := row.Scan(&acct.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// FindByEmail returns the account for a normalized email, or nil when absent.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, NormalizeEmail(email))
	return scanAccount(row)
}

// FindByID returns the account by id, or nil when absent.
func (r *Repository) FindByID(ctx context.Context, id string) (*Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// List returns accounts with optional status filter, newest first.
func (r *Repository) List(ctx context.Context, status Status, limit, offset int) ([]Account, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + accountColumns + ` FROM accounts`
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(len(args)+1) + " OFFSET $" + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Account
	for rows.Next() {
		acct, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *acct)
	}
	return res, rows.Err()
}

// UpdateStatus performs the pending -> {approved,rejected} transition as a
// compare-and-set: the WHERE clause pins the current state so two concurrent
// reviews of the same application cannot both win. Returns whether a row
// changed.
func (r *Repository) UpdateStatus(ctx context.Context, id string, next Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET status = $2, reviewed_at = NOW()
		WHERE id = $1 AND role = 'student' AND status = 'pending'
	`, id, next)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkNotified stamps the account after the worker dispatched its
// status-change notification.
func (r *Repository) MarkNotified(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET notified_at = NOW() WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row *sql.Row) (*Account, error) {
	acct, err := scanAccountRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return acct, nil
}

func scanAccountRow(row rowScanner) (*Account, error) {
	var acct Account
	var reviewedAt, notifiedAt sql.NullTime
	if err := row.Scan(&acct.ID, &acct.FullName, &acct.Email, &acct.PasswordHash, &acct.Phone,
		&acct.Role, &acct.Status, &acct.FatherPhone, &acct.Pincode, &acct.AadhaarNumber,
		&acct.Income, &acct.JEEMainRank, &acct.JEEAdvancedRank, &acct.Category, &acct.Degree,
		&acct.CreatedAt, &reviewedAt, &notifiedAt); err != nil {
		return nil, err
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		acct.ReviewedAt = &t
	}
	if notifiedAt.Valid {
		t := notifiedAt.Time
		acct.NotifiedAt = &t
	}
	return &acct, nil
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }
