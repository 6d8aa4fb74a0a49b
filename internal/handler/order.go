package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/football-ticketing/internal/middleware"
	"github.com/iliyamo/football-ticketing/internal/model"
	"github.com/iliyamo/football-ticketing/internal/queue"
	"github.com/iliyamo/football-ticketing/internal/repository"
)

// maxOrderBody caps the PUT body, which is read whole before decoding.
const maxOrderBody = 1 << 20

// OrderHandler exposes the order workflow.  Every route requires a session;
// regular users only ever see and touch their own orders.
type OrderHandler struct {
	Orders    *repository.OrderRepo
	Publisher queue.Publisher
	Log       logrus.FieldLogger
	now       func() time.Time
}

func NewOrderHandler(r *repository.OrderRepo, pub queue.Publisher, log logrus.FieldLogger) *OrderHandler {
	if pub == nil {
		pub = queue.Nop{}
	}
	return &OrderHandler{Orders: r, Publisher: pub, Log: log, now: time.Now}
}

func (req *OrderRequest) input() repository.OrderInput {
	return repository.OrderInput{
		UserID:     req.UserID,
		EventID:    req.EventID,
		TribuneID:  req.TribuneID,
		Quantity:   req.Quantity,
		TotalPrice: *req.TotalPrice,
		Status:     model.OrderStatus(req.Status),
	}
}

// publish emits an order event after the change committed.  Broker trouble
// is logged and never reaches the client.
func (h *OrderHandler) publish(c echo.Context, typ string, o *model.Order) {
	ev := queue.NewOrderEvent(typ, o, h.now())
	if err := h.Publisher.Publish(c.Request().Context(), ev); err != nil {
		h.Log.WithError(err).WithFields(logrus.Fields{"event": typ, "order_id": o.ID}).Warn("order event dropped")
	}
}

func principal(c echo.Context) middleware.Principal {
	p, _ := middleware.PrincipalFrom(c)
	return p
}

// orderFailed maps order workflow errors.  An unknown tribune is a bad
// request here rather than a 404 because it came from the body.
func (h *OrderHandler) orderFailed(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrInsufficientSeats):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "not enough tickets available"})
	case errors.Is(err, repository.ErrTribuneNotFound):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tribune not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "order was modified concurrently, retry"})
	}
	return fail(c, h.Log, err)
}

// List returns orders newest first.  Admins may filter with ?userId=;
// everyone else gets their own orders.
func (h *OrderHandler) List(c echo.Context) error {
	p := principal(c)
	userID, ok := queryID(c, "userId")
	if !ok {
		return invalidID(c, "user")
	}
	if !p.IsAdmin() {
		if userID != 0 && userID != p.ID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot list another user's orders"})
		}
		userID = p.ID
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.Orders.List(ctx, userID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one order.  Another user's order looks the same as a missing
// one.
func (h *OrderHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	o, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if p := principal(c); !p.IsAdmin() && o.UserID != p.ID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": repository.ErrOrderNotFound.Error()})
	}
	return c.JSON(http.StatusOK, o)
}

// Create places an order and reserves its seats atomically.
func (h *OrderHandler) Create(c echo.Context) error {
	var req CreateOrderRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	in := repository.OrderInput{
		UserID:     req.UserID,
		EventID:    req.EventID,
		TribuneID:  req.TribuneID,
		Quantity:   req.Quantity,
		TotalPrice: req.TotalPrice,
		Status:     model.OrderStatus(req.Status),
	}
	if in.Status == "" {
		in.Status = model.OrderPending
	}

	p := principal(c)
	if in.UserID == 0 {
		in.UserID = p.ID
	}
	if !p.IsAdmin() {
		if in.UserID != p.ID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot place orders for another user"})
		}
		if in.Status != model.OrderPending {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "new orders must start as pending"})
		}
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	o, err := h.Orders.Create(ctx, in)
	if err != nil {
		return h.orderFailed(c, err)
	}
	h.publish(c, queue.OrderCreated, o)
	return c.JSON(http.StatusCreated, o)
}

// UpdateStatus handles PATCH /api/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}
	var req OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	return h.changeStatus(c, id, req)
}

// changeStatus resolves the order before looking at the requested status,
// so a missing or foreign order is a 404 whatever the body says.
func (h *OrderHandler) changeStatus(c echo.Context, id int64, req OrderStatusRequest) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	cur, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if p := principal(c); !p.IsAdmin() && cur.UserID != p.ID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": repository.ErrOrderNotFound.Error()})
	}
	if err := req.Validate(); err != nil {
		return validationFailed(c, err)
	}

	o, changed, err := h.Orders.UpdateStatus(ctx, id, model.OrderStatus(req.Status))
	if err != nil {
		return h.orderFailed(c, err)
	}
	if changed {
		switch o.Status {
		case model.OrderPaid:
			h.publish(c, queue.OrderPaid, o)
		case model.OrderCancelled:
			h.publish(c, queue.OrderCancelled, o)
		}
	}
	return c.JSON(http.StatusOK, o)
}

// Update handles PUT /api/orders/:id.  A body holding only "status" is
// treated like the PATCH route so older clients keep working; anything
// else is a full admin edit that reconciles seat inventory.
func (h *OrderHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxOrderBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if _, hasStatus := fields["status"]; hasStatus && len(fields) == 1 {
		var req OrderStatusRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
		}
		return h.changeStatus(c, id, req)
	}

	if !principal(c).IsAdmin() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only administrators may edit orders"})
	}
	var req OrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if _, err := h.Orders.GetByID(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	if err := req.Validate(); err != nil {
		return validationFailed(c, err)
	}
	o, err := h.Orders.Replace(ctx, id, req.input())
	if err != nil {
		return h.orderFailed(c, err)
	}
	h.publish(c, queue.OrderUpdated, o)
	return c.JSON(http.StatusOK, o)
}

// Delete removes an order, refunding its seats if it still held them.
func (h *OrderHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	o, err := h.Orders.Delete(ctx, id)
	if err != nil {
		return h.orderFailed(c, err)
	}
	h.publish(c, queue.OrderDeleted, o)
	return c.JSON(http.StatusOK, echo.Map{"message": "order deleted"})
}
