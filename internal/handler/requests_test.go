package handler

import (
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()
	require.Error(t, err)
	errs, ok := err.(validation.Errors)
	require.True(t, ok, "expected validation.Errors, got %T", err)
	return errs
}

func TestRegisterRequestValidate(t *testing.T) {
	errs := fieldErrors(t, (&RegisterRequest{Email: "not-an-email", Password: "123"}).Validate())
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")

	assert.NoError(t, (&RegisterRequest{Username: "fan", Email: "fan@example.com", Password: "secret"}).Validate())
}

func TestTribuneRequestAcceptsZeroButNotMissing(t *testing.T) {
	zero := 0
	free := 0.0
	req := TribuneRequest{EventID: 1, Name: "North", Price: &free, AvailableSeats: &zero, creating: true}
	assert.NoError(t, req.Validate())

	errs := fieldErrors(t, (&TribuneRequest{Name: "North", creating: true}).Validate())
	assert.Contains(t, errs, "event_id")
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "available_seats")

	negative := -1
	errs = fieldErrors(t, (&TribuneRequest{Name: "North", Price: &free, AvailableSeats: &negative}).Validate())
	assert.Contains(t, errs, "available_seats")
	assert.NotContains(t, errs, "event_id")
}

func TestCreateOrderRequestValidate(t *testing.T) {
	assert.NoError(t, (&CreateOrderRequest{TribuneID: 1, Quantity: 3}).Validate())

	errs := fieldErrors(t, (&CreateOrderRequest{Quantity: 0, Status: "expired"}).Validate())
	assert.Contains(t, errs, "tribune_id")
	assert.Contains(t, errs, "quantity")
	assert.Contains(t, errs, "status")
}

func TestOrderRequestRequiresEveryField(t *testing.T) {
	errs := fieldErrors(t, (&OrderRequest{}).Validate())
	for _, f := range []string{"user_id", "event_id", "tribune_id", "quantity", "total_price", "status"} {
		assert.Contains(t, errs, f)
	}
}

func TestEventRequestDate(t *testing.T) {
	req := EventRequest{Team1Name: "A", Team2Name: "B", Location: "GBK", CategoryID: 1, Date: "tomorrow"}
	errs := fieldErrors(t, req.Validate())
	assert.Contains(t, errs, "date")

	req.Date = "2026-11-01T19:00"
	require.NoError(t, req.Validate())
	assert.Equal(t, time.Date(2026, 11, 1, 19, 0, 0, 0, time.UTC), req.input().Date)
}

func TestParseEventDateLayouts(t *testing.T) {
	want := time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)
	for _, s := range []string{"2026-11-01T12:00:00Z", "2026-11-01T19:00:00+07:00", "2026-11-01 12:00:00", "2026-11-01 12:00"} {
		got, err := parseEventDate(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), "%s parsed as %s", s, got)
	}
	_, err := parseEventDate("01/11/2026")
	assert.ErrorIs(t, err, errInvalidDate)
}

func TestUserRequestRoleRules(t *testing.T) {
	create := UserRequest{Username: "a", Email: "a@example.com", Password: "secret", creating: true}
	assert.NoError(t, create.Validate())

	update := UserRequest{Username: "a", Email: "a@example.com"}
	errs := fieldErrors(t, update.Validate())
	assert.Contains(t, errs, "role")

	update.Role = "owner"
	errs = fieldErrors(t, update.Validate())
	assert.Contains(t, errs, "role")

	update.Role = "admin"
	assert.NoError(t, update.Validate())
}
