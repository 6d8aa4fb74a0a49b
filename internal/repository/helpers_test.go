package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/football-ticketing/internal/database/dbtest"
	"github.com/iliyamo/football-ticketing/internal/model"
)

// fixture is a database seeded with one category, one event, one tribune with
// ten seats at 100000 and one regular user.
type fixture struct {
	db         *sql.DB
	categories *CategoryRepo
	events     *EventRepo
	tribunes   *TribuneRepo
	orders     *OrderRepo
	users      *UserRepo

	category *model.Category
	event    *model.Event
	tribune  *model.Tribune
	user     *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := dbtest.Open(t)
	f := &fixture{
		db:         db,
		categories: NewCategoryRepo(db),
		events:     NewEventRepo(db),
		tribunes:   NewTribuneRepo(db),
		orders:     NewOrderRepo(db),
		users:      NewUserRepo(db, 4),
	}
	var err error
	f.category, err = f.categories.Create(ctx, "Liga 1", nil)
	require.NoError(t, err)
	f.event, err = f.events.Create(ctx, EventInput{
		Team1Name:  "Persija",
		Team2Name:  "Persib",
		Date:       time.Date(2026, 11, 1, 19, 0, 0, 0, time.UTC),
		Location:   "GBK",
		CategoryID: f.category.ID,
	})
	require.NoError(t, err)
	f.tribune, err = f.tribunes.Create(ctx, TribuneInput{EventID: f.event.ID, Name: "VIP", Price: 100000, AvailableSeats: 10})
	require.NoError(t, err)
	f.user, err = f.users.Create(ctx, UserInput{Username: "fan", Email: "fan@example.com", Password: "secret"})
	require.NoError(t, err)
	return f
}

func (f *fixture) seats(t *testing.T) int {
	t.Helper()
	tr, err := f.tribunes.GetByID(context.Background(), f.tribune.ID)
	require.NoError(t, err)
	return tr.AvailableSeats
}

func (f *fixture) order(t *testing.T, qty int) *model.Order {
	t.Helper()
	o, err := f.orders.Create(context.Background(), OrderInput{
		UserID: f.user.ID, EventID: f.event.ID, TribuneID: f.tribune.ID, Quantity: qty,
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) countOrders(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&n))
	return n
}
