package order

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rxcart/rxcart/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/carts/:customerId/checkout", h.Checkout)
	api.GET("/orders/:id", h.Get)
	api.POST("/orders/:id/status", h.Transition)
	api.GET("/customers/:customerId/orders", h.ListByCustomer)
	api.GET("/pharmacies/:id/orders", h.ListByPharmacy)
}

type checkoutRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type checkoutResponse struct {
	Orders           []*Order    `json:"orders"`
	FailedPharmacies []uuid.UUID `json:"failed_pharmacies,omitempty"`
}

func (h *Handler) Checkout(c echo.Context) error {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	contact := Contact{Name: req.Name, Email: req.Email, Phone: req.Phone}
	created, err := h.svc.Checkout(c.Request().Context(), customerID, contact)
	if err != nil {
		var partial *PartialCheckoutError
		if errors.As(err, &partial) {
			// Some pharmacies failed; report what was created alongside them.
			return c.JSON(http.StatusMultiStatus, checkoutResponse{
				Orders:           partial.Created,
				FailedPharmacies: partial.Failed,
			})
		}
		if errors.Is(err, ErrEmptyCart) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, checkoutResponse{Orders: created})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	o, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}

type transitionRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) Transition(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !req.Status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status: "+string(req.Status))
	}

	o, err := h.svc.Transition(c.Request().Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		var invalid *InvalidTransitionError
		if errors.As(err, &invalid) {
			return echo.NewHTTPError(http.StatusConflict, invalid.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) ListByCustomer(c echo.Context) error {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}

	p := pagination.FromContext(c)
	orders, total, err := h.svc.ListByCustomer(c.Request().Context(), customerID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(orders, total, p.Limit, p.Offset))
}

func (h *Handler) ListByPharmacy(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy id")
	}

	p := pagination.FromContext(c)
	orders, total, err := h.svc.ListByPharmacy(c.Request().Context(), pharmacyID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(orders, total, p.Limit, p.Offset))
}
