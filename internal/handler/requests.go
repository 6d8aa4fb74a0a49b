package handler

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/iliyamo/football-ticketing/internal/model"
)

const (
	minPasswordLength = 6
)

var errInvalidDate = errors.New("must be a date such as 2026-11-01T19:00:00Z or 2026-11-01 19:00")

// eventDateLayouts are accepted for event dates, tried in order.  Layouts
// without a zone are read as UTC.
var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range eventDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errInvalidDate
}

func validDate(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil // Required reports the blank case
	}
	_, err := parseEventDate(s)
	return err
}

func statusRule() validation.Rule {
	return validation.In(string(model.OrderPending), string(model.OrderPaid), string(model.OrderCancelled)).
		Error("must be one of pending, paid, cancelled")
}

// ----- auth -----

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *RegisterRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required, validation.Length(minPasswordLength, 0)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
}

// ----- users -----

type UserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	creating bool
}

func (req *UserRequest) Validate() error {
	passwordRules := []validation.Rule{validation.Length(minPasswordLength, 0)}
	roleRules := []validation.Rule{validation.In(model.RoleUser, model.RoleAdmin)}
	if req.creating {
		passwordRules = append([]validation.Rule{validation.Required}, passwordRules...)
	} else {
		roleRules = append([]validation.Rule{validation.Required}, roleRules...)
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, passwordRules...),
		validation.Field(&req.Role, roleRules...),
	)
}

// ----- categories -----

type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (req *CategoryRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
	)
}

// ----- events -----

type EventRequest struct {
	Team1Name    string  `json:"team1_name"`
	Team2Name    string  `json:"team2_name"`
	Team1LogoURL *string `json:"team1_logo_url"`
	Team2LogoURL *string `json:"team2_logo_url"`
	Description  *string `json:"description"`
	Date         string  `json:"date"`
	Location     string  `json:"location"`
	CategoryID   int64   `json:"category_id"`
}

func (req *EventRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Team1Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Team2Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Team1LogoURL, validation.Length(0, 500)),
		validation.Field(&req.Team2LogoURL, validation.Length(0, 500)),
		validation.Field(&req.Date, validation.Required, validation.By(validDate)),
		validation.Field(&req.Location, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.CategoryID, validation.Required, validation.Min(int64(1))),
	)
}

// ----- tribunes -----

type TribuneRequest struct {
	EventID        int64    `json:"event_id"`
	Name           string   `json:"name"`
	Price          *float64 `json:"price"`
	AvailableSeats *int     `json:"available_seats"`
	creating       bool
}

func (req *TribuneRequest) Validate() error {
	var eventRules []validation.Rule
	if req.creating {
		eventRules = []validation.Rule{validation.Required, validation.Min(int64(1))}
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.EventID, eventRules...),
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Price, validation.NotNil, validation.Min(0.0)),
		validation.Field(&req.AvailableSeats, validation.NotNil, validation.Min(0)),
	)
}

// ----- orders -----

// CreateOrderRequest is the body of POST /api/orders.  Only tribune_id and
// quantity are required: user_id defaults to the caller, event_id to the
// tribune's event, status to pending, and an absent or zero total_price is
// computed from the tribune price.
type CreateOrderRequest struct {
	UserID     int64   `json:"user_id"`
	EventID    int64   `json:"event_id"`
	TribuneID  int64   `json:"tribune_id"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
	Status     string  `json:"status"`
}

func (req *CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Min(int64(0))),
		validation.Field(&req.EventID, validation.Min(int64(0))),
		validation.Field(&req.TribuneID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&req.TotalPrice, validation.Min(0.0)),
		validation.Field(&req.Status, statusRule()),
	)
}

// OrderRequest is the body of the full PUT edit.  Every field is required.
type OrderRequest struct {
	UserID     int64    `json:"user_id"`
	EventID    int64    `json:"event_id"`
	TribuneID  int64    `json:"tribune_id"`
	Quantity   int      `json:"quantity"`
	TotalPrice *float64 `json:"total_price"`
	Status     string   `json:"status"`
}

func (req *OrderRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.EventID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.TribuneID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&req.TotalPrice, validation.NotNil, validation.Min(0.0)),
		validation.Field(&req.Status, validation.Required, statusRule()),
	)
}

type OrderStatusRequest struct {
	Status string `json:"status"`
}

func (req *OrderStatusRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Status, validation.Required, statusRule()),
	)
}
