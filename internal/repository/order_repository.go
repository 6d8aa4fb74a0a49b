package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/football-ticketing/internal/model"
	"github.com/iliyamo/football-ticketing/internal/utils"
)

// OrderRepo implements the order and seat-inventory workflow.  Every method
// that touches tribunes.available_seats does so inside one transaction
// together with the order row it belongs to, and seats are refunded at most
// once per order: only the transition out of a seat-holding status gives
// them back.
type OrderRepo struct {
	db      *sql.DB
	now     func() time.Time
	newCode func() string
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{
		db:      db,
		now:     func() time.Time { return time.Now().UTC() },
		newCode: utils.NewBookingCode,
	}
}

// OrderInput carries the caller-supplied columns of an order.
//
// Fields:
//   - EventID: 0 means "the tribune's event".
//   - TotalPrice: 0 means "quantity × tribune price".
//   - Status: initial (create) or target (replace) status.
type OrderInput struct {
	UserID     int64
	EventID    int64
	TribuneID  int64
	Quantity   int
	TotalPrice float64
	Status     model.OrderStatus
}

const orderColumns = "id, user_id, event_id, tribune_id, quantity, total_price, status, order_date, booking_code"

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	var (
		o      model.Order
		status string
		code   sql.NullString
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.EventID, &o.TribuneID, &o.Quantity, &o.TotalPrice, &status, &o.OrderDate, &code); err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)
	o.BookingCode = stringPtr(code)
	return &o, nil
}

func getOrder(ctx context.Context, q querier, id int64) (*model.Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

// GetByID returns ErrOrderNotFound when no row matches.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return getOrder(ctx, r.db, id)
}

// List returns orders newest first.  userID 0 lists every user's orders.
func (r *OrderRepo) List(ctx context.Context, userID int64) ([]*model.Order, error) {
	q := "SELECT " + orderColumns + " FROM orders"
	var args []any
	if userID > 0 {
		q += " WHERE user_id = ?"
		args = append(args, userID)
	}
	q += " ORDER BY order_date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// resolveTribune loads the tribune an order points at and checks that the
// order's event and user agree with it.  It fills in EventID when unset.
func resolveTribune(ctx context.Context, tx *sql.Tx, in *OrderInput) (*model.Tribune, error) {
	t, err := getTribune(ctx, tx, in.TribuneID)
	if err != nil {
		return nil, err
	}
	if in.EventID == 0 {
		in.EventID = t.EventID
	}
	if in.EventID != t.EventID {
		return nil, fmt.Errorf("tribune %d does not belong to event %d: %w", t.ID, in.EventID, ErrInvalidReference)
	}
	ok, err := exists(ctx, tx, "SELECT 1 FROM users WHERE id = ?", in.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("user %d: %w", in.UserID, ErrInvalidReference)
	}
	return t, nil
}

// Create reserves seats and inserts the order in one transaction.  If the
// tribune has fewer than Quantity seats left, ErrInsufficientSeats is
// returned and neither the tribune nor the orders table changes.  An order
// created directly as cancelled holds no seats.
func (r *OrderRepo) Create(ctx context.Context, in OrderInput) (*model.Order, error) {
	if in.Status == "" {
		in.Status = model.OrderPending
	}
	var out *model.Order
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		t, err := resolveTribune(ctx, tx, &in)
		if err != nil {
			return err
		}
		if in.Status.HoldsSeats() {
			if err := reserveSeats(ctx, tx, t.ID, in.Quantity); err != nil {
				return err
			}
		}
		if in.TotalPrice <= 0 {
			in.TotalPrice = float64(in.Quantity) * t.Price
		}
		var code sql.NullString
		if in.Status == model.OrderPaid {
			code = sql.NullString{String: r.newCode(), Valid: true}
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO orders (user_id, event_id, tribune_id, quantity, total_price, status, order_date, booking_code)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			in.UserID, in.EventID, in.TribuneID, in.Quantity, in.TotalPrice, string(in.Status), r.now(), code)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrInvalidReference
			}
			return fmt.Errorf("insert order: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		out, err = getOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus moves an order to a new status.  Cancelling refunds the
// order's seats, but only for the call that actually flips the row; a
// repeated cancel changes nothing.  Paying issues a booking code.  The
// returned flag reports whether the row changed.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, to model.OrderStatus) (*model.Order, bool, error) {
	var (
		out     *model.Order
		changed bool
	)
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		cur, err := getOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if !model.CanTransition(cur.Status, to) {
			return fmt.Errorf("%s -> %s: %w", cur.Status, to, ErrInvalidTransition)
		}
		if cur.Status == to {
			out = cur
			return nil
		}

		var res sql.Result
		switch to {
		case model.OrderCancelled:
			res, err = tx.ExecContext(ctx,
				"UPDATE orders SET status = ? WHERE id = ? AND status = ?",
				string(model.OrderCancelled), id, string(cur.Status))
		case model.OrderPaid:
			res, err = tx.ExecContext(ctx,
				"UPDATE orders SET status = ?, booking_code = COALESCE(booking_code, ?) WHERE id = ? AND status = ?",
				string(model.OrderPaid), r.newCode(), id, string(cur.Status))
		default:
			return fmt.Errorf("%s -> %s: %w", cur.Status, to, ErrInvalidTransition)
		}
		if err != nil {
			return fmt.Errorf("update order %d status: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			// someone else moved the order between our read and write
			return ErrConflict
		}
		changed = true
		if to == model.OrderCancelled && cur.Status.HoldsSeats() {
			if err := releaseSeats(ctx, tx, cur.TribuneID, cur.Quantity); err != nil {
				return err
			}
		}
		out, err = getOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return out, changed, nil
}

// Replace overwrites every column of an order, reconciling inventory: the
// old reservation is released if it held seats and the new one is taken if
// its status holds seats.  When the new reservation cannot be satisfied the
// whole edit is rolled back.
func (r *OrderRepo) Replace(ctx context.Context, id int64, in OrderInput) (*model.Order, error) {
	var out *model.Order
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		cur, err := getOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if cur.Status.HoldsSeats() {
			if err := releaseSeats(ctx, tx, cur.TribuneID, cur.Quantity); err != nil {
				return err
			}
		}
		if _, err := resolveTribune(ctx, tx, &in); err != nil {
			return err
		}
		if in.Status.HoldsSeats() {
			if err := reserveSeats(ctx, tx, in.TribuneID, in.Quantity); err != nil {
				return err
			}
		}
		code := nullString(cur.BookingCode)
		if in.Status == model.OrderPaid && !code.Valid {
			code = sql.NullString{String: r.newCode(), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE orders SET user_id = ?, event_id = ?, tribune_id = ?, quantity = ?, total_price = ?, status = ?, booking_code = ?
			 WHERE id = ?`,
			in.UserID, in.EventID, in.TribuneID, in.Quantity, in.TotalPrice, string(in.Status), code, id); err != nil {
			if isForeignKeyViolation(err) {
				return ErrInvalidReference
			}
			return fmt.Errorf("replace order %d: %w", id, err)
		}
		out, err = getOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an order and returns the row as it was.  Seats are refunded
// only when the order still held them (pending or paid), so deleting an
// already cancelled order never refunds twice.
func (r *OrderRepo) Delete(ctx context.Context, id int64) (*model.Order, error) {
	var out *model.Order
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		cur, err := getOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM orders WHERE id = ? AND status = ?", id, string(cur.Status))
		if err != nil {
			return fmt.Errorf("delete order %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrConflict
		}
		if cur.Status.HoldsSeats() {
			if err := releaseSeats(ctx, tx, cur.TribuneID, cur.Quantity); err != nil {
				return err
			}
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListStalePending returns up to limit ids of pending orders created before
// cutoff, oldest first.
func (r *OrderRepo) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM orders WHERE status = ? AND order_date < ? ORDER BY order_date, id LIMIT ?",
		string(model.OrderPending), cutoff.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list stale orders: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Expire cancels a pending order whose hold window elapsed and refunds its
// seats.  It returns nil, nil when the order is no longer pending (paid or
// cancelled in the meantime), leaving it untouched.
func (r *OrderRepo) Expire(ctx context.Context, id int64) (*model.Order, error) {
	var out *model.Order
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		cur, err := getOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE orders SET status = ? WHERE id = ? AND status = ?",
			string(model.OrderCancelled), id, string(model.OrderPending))
		if err != nil {
			return fmt.Errorf("expire order %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		if err := releaseSeats(ctx, tx, cur.TribuneID, cur.Quantity); err != nil {
			return err
		}
		out, err = getOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
