package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/football-ticketing/internal/model"
	"github.com/iliyamo/football-ticketing/internal/utils"
)

// UserRepo persists accounts.  Passwords are hashed with bcrypt before they
// reach the table and are only read back by GetByEmail for login.
type UserRepo struct {
	db   *sql.DB
	cost int
}

func NewUserRepo(db *sql.DB, bcryptCost int) *UserRepo { return &UserRepo{db: db, cost: bcryptCost} }

// ErrEmailExists is returned when the email is already registered.  It
// matches ErrDuplicate with errors.Is.
var ErrEmailExists = fmt.Errorf("email already exists: %w", ErrDuplicate)

// UserInput carries the writable columns of a user.  An empty Password on
// update keeps the stored hash.
type UserInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

const userColumns = "id, username, email, role, created_at"

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create hashes the password and inserts the user.
func (r *UserRepo) Create(ctx context.Context, in UserInput) (*model.User, error) {
	email := normalizeEmail(in.Email)
	taken, err := exists(ctx, r.db, "SELECT 1 FROM users WHERE email = ? LIMIT 1", email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}
	hash, err := utils.HashPassword(in.Password, r.cost)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, email, password, role) VALUES (?, ?, ?, ?)",
		strings.TrimSpace(in.Username), email, hash, role)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByEmail fetches a user including the password hash, for login.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, email, password, role, created_at FROM users WHERE email = ? LIMIT 1",
		normalizeEmail(email)).Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// GetByID fetches a user without the password hash.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// List returns every user ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]*model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update overwrites username, email and role, and the password when one is
// given.
func (r *UserRepo) Update(ctx context.Context, id int64, in UserInput) (*model.User, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)
	taken, err := exists(ctx, r.db, "SELECT 1 FROM users WHERE email = ? AND id <> ? LIMIT 1", email, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}

	q := "UPDATE users SET username = ?, email = ?, role = ?"
	args := []any{strings.TrimSpace(in.Username), email, in.Role}
	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password, r.cost)
		if err != nil {
			return nil, err
		}
		q += ", password = ?"
		args = append(args, hash)
	}
	q += " WHERE id = ?"
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user and, through the cascade, the user's orders.  Seats
// still held by pending or paid orders go back to their tribunes in the same
// transaction so the cascade never loses inventory.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		held, err := heldSeatsByTribune(ctx, tx, id)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrUserNotFound
		}
		for tribuneID, qty := range held {
			if err := releaseSeats(ctx, tx, tribuneID, qty); err != nil {
				return err
			}
		}
		return nil
	})
}

// heldSeatsByTribune sums the seats a user's open orders hold, per tribune.
// The rows are fully read before returning so the caller can reuse tx.
func heldSeatsByTribune(ctx context.Context, tx *sql.Tx, userID int64) (map[int64]int, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT tribune_id, SUM(quantity) FROM orders WHERE user_id = ? AND status IN (?, ?) GROUP BY tribune_id",
		userID, string(model.OrderPending), string(model.OrderPaid))
	if err != nil {
		return nil, fmt.Errorf("held seats for user %d: %w", userID, err)
	}
	defer rows.Close()

	held := make(map[int64]int)
	for rows.Next() {
		var tribuneID int64
		var qty int
		if err := rows.Scan(&tribuneID, &qty); err != nil {
			return nil, err
		}
		held[tribuneID] = qty
	}
	return held, rows.Err()
}
