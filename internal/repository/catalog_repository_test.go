package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestCategoryUniqueName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.categories.Create(ctx, "Liga 1", nil)
	assert.ErrorIs(t, err, ErrDuplicate)

	cup, err := f.categories.Create(ctx, "Piala Indonesia", strp("knockout"))
	require.NoError(t, err)
	require.NotNil(t, cup.Description)
	assert.Equal(t, "knockout", *cup.Description)

	_, err = f.categories.Update(ctx, cup.ID, "Liga 1", nil)
	assert.ErrorIs(t, err, ErrDuplicate)

	renamed, err := f.categories.Update(ctx, cup.ID, "Piala Presiden", strp(""))
	require.NoError(t, err)
	assert.Equal(t, "Piala Presiden", renamed.Name)
	assert.Nil(t, renamed.Description)
}

func TestCategoryDeleteGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.categories.Delete(ctx, f.category.ID)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.categories.GetByID(ctx, f.category.ID)
	require.NoError(t, err, "category with events must remain")

	empty, err := f.categories.Create(ctx, "Friendly", nil)
	require.NoError(t, err)
	require.NoError(t, f.categories.Delete(ctx, empty.ID))
	_, err = f.categories.GetByID(ctx, empty.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	assert.ErrorIs(t, f.categories.Delete(ctx, 999), ErrNotFound)
}

func TestEventLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.events.Create(ctx, EventInput{Team1Name: "A", Team2Name: "B", Date: time.Now(), Location: "X", CategoryID: 999})
	assert.ErrorIs(t, err, ErrInvalidReference)

	kick := time.Date(2026, 12, 24, 15, 30, 0, 0, time.UTC)
	upd, err := f.events.Update(ctx, f.event.ID, EventInput{
		Team1Name: "Arema", Team2Name: "Persebaya", Team1LogoURL: strp("https://img/arema.png"), Team2LogoURL: strp(""),
		Date: kick, Location: "Kanjuruhan", CategoryID: f.category.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Arema", upd.Team1Name)
	require.NotNil(t, upd.Team1LogoURL)
	assert.Nil(t, upd.Team2LogoURL)
	assert.True(t, upd.Date.Equal(kick))

	list, err := f.events.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	o := f.order(t, 1)
	require.NoError(t, f.events.Delete(ctx, f.event.ID))
	_, err = f.tribunes.GetByID(ctx, f.tribune.ID)
	assert.ErrorIs(t, err, ErrTribuneNotFound, "tribunes cascade with their event")
	_, err = f.orders.GetByID(ctx, o.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound, "orders cascade with their event")

	assert.ErrorIs(t, f.events.Delete(ctx, f.event.ID), ErrEventNotFound)
}

func TestTribuneUniquePerEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tribunes.Create(ctx, TribuneInput{EventID: f.event.ID, Name: "VIP", Price: 1, AvailableSeats: 1})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = f.tribunes.Create(ctx, TribuneInput{EventID: 999, Name: "VIP", Price: 1, AvailableSeats: 1})
	assert.ErrorIs(t, err, ErrInvalidReference)

	second, err := f.events.Create(ctx, EventInput{Team1Name: "C", Team2Name: "D", Date: time.Now(), Location: "Y", CategoryID: f.category.ID})
	require.NoError(t, err)
	other, err := f.tribunes.Create(ctx, TribuneInput{EventID: second.ID, Name: "VIP", Price: 5, AvailableSeats: 1})
	require.NoError(t, err, "same name on another event is fine")

	east, err := f.tribunes.Create(ctx, TribuneInput{EventID: f.event.ID, Name: "East", Price: 20, AvailableSeats: 3})
	require.NoError(t, err)
	_, err = f.tribunes.Update(ctx, east.ID, TribuneInput{Name: "VIP", Price: 20, AvailableSeats: 3})
	assert.ErrorIs(t, err, ErrDuplicate)

	moved, err := f.tribunes.Update(ctx, east.ID, TribuneInput{EventID: second.ID, Name: "East Stand", Price: 25, AvailableSeats: 30})
	require.NoError(t, err)
	assert.Equal(t, f.event.ID, moved.EventID, "event_id is immutable")
	assert.Equal(t, 30, moved.AvailableSeats)

	byEvent, err := f.tribunes.List(ctx, f.event.ID)
	require.NoError(t, err)
	require.Len(t, byEvent, 2)
	assert.Equal(t, "East Stand", byEvent[0].Name, "cheapest first")

	all, err := f.tribunes.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, f.tribunes.Delete(ctx, other.ID))
	assert.ErrorIs(t, f.tribunes.Delete(ctx, other.ID), ErrTribuneNotFound)
}

func TestUserRepo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Create(ctx, UserInput{Username: "dup", Email: " FAN@example.com ", Password: "x"})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.ErrorIs(t, err, ErrDuplicate)

	withHash, err := f.users.GetByEmail(ctx, "Fan@Example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", withHash.Password)
	assert.Equal(t, "user", withHash.Role)

	admin, err := f.users.Create(ctx, UserInput{Username: "boss", Email: "boss@example.com", Password: "pw", Role: "admin"})
	require.NoError(t, err)
	assert.Empty(t, admin.Password)

	_, err = f.users.Update(ctx, admin.ID, UserInput{Username: "boss", Email: "fan@example.com", Role: "admin"})
	assert.ErrorIs(t, err, ErrEmailExists)

	upd, err := f.users.Update(ctx, admin.ID, UserInput{Username: "chief", Email: "chief@example.com", Role: "user", Password: "new"})
	require.NoError(t, err)
	assert.Equal(t, "chief", upd.Username)
	assert.Equal(t, "user", upd.Role)

	list, err := f.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, f.users.Delete(ctx, admin.ID))
	_, err = f.users.GetByID(ctx, admin.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = f.users.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
