package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/football-ticketing/internal/model"
)

// TribuneRepo provides persistence for seating sections and owns the seat
// counter used by the order workflow.
type TribuneRepo struct {
	db *sql.DB
}

func NewTribuneRepo(db *sql.DB) *TribuneRepo { return &TribuneRepo{db: db} }

// TribuneInput carries the writable columns of a tribune.  EventID is only
// read on create; a tribune never moves to another event.
type TribuneInput struct {
	EventID        int64
	Name           string
	Price          float64
	AvailableSeats int
}

const tribuneColumns = "id, event_id, name, price, available_seats, created_at"

func scanTribune(row interface{ Scan(...any) error }) (*model.Tribune, error) {
	var t model.Tribune
	if err := row.Scan(&t.ID, &t.EventID, &t.Name, &t.Price, &t.AvailableSeats, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns tribunes ordered by price.  eventID 0 lists every event.
func (r *TribuneRepo) List(ctx context.Context, eventID int64) ([]*model.Tribune, error) {
	q := "SELECT " + tribuneColumns + " FROM tribunes"
	var args []any
	if eventID > 0 {
		q += " WHERE event_id = ?"
		args = append(args, eventID)
	}
	q += " ORDER BY price, id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tribunes: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Tribune, 0)
	for rows.Next() {
		t, err := scanTribune(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID returns ErrTribuneNotFound when no row matches.
func (r *TribuneRepo) GetByID(ctx context.Context, id int64) (*model.Tribune, error) {
	return getTribune(ctx, r.db, id)
}

func getTribune(ctx context.Context, q querier, id int64) (*model.Tribune, error) {
	t, err := scanTribune(q.QueryRowContext(ctx, "SELECT "+tribuneColumns+" FROM tribunes WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTribuneNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tribune %d: %w", id, err)
	}
	return t, nil
}

// Create inserts a tribune.  The name must be unique within the event.
func (r *TribuneRepo) Create(ctx context.Context, in TribuneInput) (*model.Tribune, error) {
	in.Name = strings.TrimSpace(in.Name)
	ok, err := exists(ctx, r.db, "SELECT 1 FROM events WHERE id = ?", in.EventID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("event %d: %w", in.EventID, ErrInvalidReference)
	}
	taken, err := exists(ctx, r.db, "SELECT 1 FROM tribunes WHERE event_id = ? AND name = ? LIMIT 1", in.EventID, in.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicate
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tribunes (event_id, name, price, available_seats) VALUES (?, ?, ?, ?)",
		in.EventID, in.Name, in.Price, in.AvailableSeats)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert tribune: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update overwrites name, price and available seats.  Renaming onto a name
// already used in the same event yields ErrDuplicate.
func (r *TribuneRepo) Update(ctx context.Context, id int64, in TribuneInput) (*model.Tribune, error) {
	in.Name = strings.TrimSpace(in.Name)
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := exists(ctx, r.db, "SELECT 1 FROM tribunes WHERE event_id = ? AND name = ? AND id <> ? LIMIT 1", cur.EventID, in.Name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicate
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE tribunes SET name = ?, price = ?, available_seats = ? WHERE id = ?",
		in.Name, in.Price, in.AvailableSeats, id); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("update tribune %d: %w", id, err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a tribune together with its orders (cascade).
func (r *TribuneRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tribunes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete tribune %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTribuneNotFound
	}
	return nil
}

// reserveSeats subtracts qty from the tribune in a single conditional
// statement, so two concurrent reservations can never both take the last
// seats.  Zero affected rows means either the tribune is gone or it has
// fewer than qty seats left; a follow-up probe tells which.
func reserveSeats(ctx context.Context, q querier, tribuneID int64, qty int) error {
	res, err := q.ExecContext(ctx,
		"UPDATE tribunes SET available_seats = available_seats - ? WHERE id = ? AND available_seats >= ?",
		qty, tribuneID, qty)
	if err != nil {
		return fmt.Errorf("reserve seats on tribune %d: %w", tribuneID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	found, err := exists(ctx, q, "SELECT 1 FROM tribunes WHERE id = ?", tribuneID)
	if err != nil {
		return err
	}
	if !found {
		return ErrTribuneNotFound
	}
	return ErrInsufficientSeats
}

// releaseSeats gives qty seats back to the tribune.  A tribune that no
// longer exists has nothing to refund.
func releaseSeats(ctx context.Context, q querier, tribuneID int64, qty int) error {
	if _, err := q.ExecContext(ctx,
		"UPDATE tribunes SET available_seats = available_seats + ? WHERE id = ?",
		qty, tribuneID); err != nil {
		return fmt.Errorf("release seats on tribune %d: %w", tribuneID, err)
	}
	return nil
}
