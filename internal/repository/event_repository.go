package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/football-ticketing/internal/model"
)

// EventRepo provides persistence for football matches.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// EventInput carries the writable columns of an event.  Empty logo URLs and
// descriptions are stored as NULL.
type EventInput struct {
	Team1Name    string
	Team2Name    string
	Team1LogoURL *string
	Team2LogoURL *string
	Description  *string
	Date         time.Time
	Location     string
	CategoryID   int64
}

const eventColumns = "id, team1_name, team2_name, team1_logo_url, team2_logo_url, description, date, location, category_id, created_at"

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var (
		e                 model.Event
		logo1, logo2, dsc sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Team1Name, &e.Team2Name, &logo1, &logo2, &dsc, &e.Date, &e.Location, &e.CategoryID, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Team1LogoURL = stringPtr(logo1)
	e.Team2LogoURL = stringPtr(logo2)
	e.Description = stringPtr(dsc)
	return &e, nil
}

// List returns all events, soonest kick-off first.
func (r *EventRepo) List(ctx context.Context) ([]*model.Event, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+eventColumns+" FROM events ORDER BY date, id")
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID returns ErrEventNotFound when no row matches.
func (r *EventRepo) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}
	return e, nil
}

func (r *EventRepo) categoryExists(ctx context.Context, id int64) error {
	ok, err := exists(ctx, r.db, "SELECT 1 FROM categories WHERE id = ?", id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("category %d: %w", id, ErrInvalidReference)
	}
	return nil
}

// Create inserts an event.  An unknown category yields ErrInvalidReference.
func (r *EventRepo) Create(ctx context.Context, in EventInput) (*model.Event, error) {
	if err := r.categoryExists(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	const q = `INSERT INTO events (team1_name, team2_name, team1_logo_url, team2_logo_url, description, date, location, category_id)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, in.Team1Name, in.Team2Name, nullString(in.Team1LogoURL), nullString(in.Team2LogoURL),
		nullString(in.Description), in.Date.UTC(), in.Location, in.CategoryID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrInvalidReference
		}
		return nil, fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update overwrites every writable column, category included.
func (r *EventRepo) Update(ctx context.Context, id int64, in EventInput) (*model.Event, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := r.categoryExists(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	const q = `UPDATE events SET team1_name = ?, team2_name = ?, team1_logo_url = ?, team2_logo_url = ?,
	           description = ?, date = ?, location = ?, category_id = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, in.Team1Name, in.Team2Name, nullString(in.Team1LogoURL), nullString(in.Team2LogoURL),
		nullString(in.Description), in.Date.UTC(), in.Location, in.CategoryID, id); err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrInvalidReference
		}
		return nil, fmt.Errorf("update event %d: %w", id, err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes an event.  Tribunes and orders of the event go with it
// through the ON DELETE CASCADE keys.
func (r *EventRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}
