package license

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
	api.POST("/license-requests", h.Submit)
	api.GET("/license-requests/:id", h.Get)
	api.POST("/license-requests/:id/resolve", h.Resolve)
	api.GET("/customers/:customerId/license-requests", h.ListByCustomer)
	api.GET("/pharmacies/:id/license-requests", h.ListPendingByPharmacy)
}

type submitRequest struct {
	CustomerID uuid.UUID `json:"customer_id"`
	MedicineID uuid.UUID `json:"medicine_id"`
	PharmacyID uuid.UUID `json:"pharmacy_id"`
	Quantity   int       `json:"quantity"`
}

func (h *Handler) Submit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.CustomerID == uuid.Nil || req.MedicineID == uuid.Nil || req.PharmacyID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "customer_id, medicine_id and pharmacy_id are required")
	}

	r, err := h.svc.Submit(c.Request().Context(), req.CustomerID, req.MedicineID, req.PharmacyID, req.Quantity)
	if err != nil {
		if errors.Is(err, ErrDuplicateRequest) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request id")
	}

	r, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "license request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

type resolveRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

func (h *Handler) Resolve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request id")
	}

	var req resolveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	r, err := h.svc.Resolve(c.Request().Context(), id, req.Decision, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "license request not found")
		case errors.Is(err, ErrAlreadyResolved):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListByCustomer(c echo.Context) error {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}

	p := pagination.FromContext(c)
	requests, total, err := h.svc.ListByCustomer(c.Request().Context(), customerID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(requests, total, p.Limit, p.Offset))
}

func (h *Handler) ListPendingByPharmacy(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy id")
	}

	p := pagination.FromContext(c)
	requests, total, err := h.svc.ListPendingByPharmacy(c.Request().Context(), pharmacyID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(requests, total, p.Limit, p.Offset))
}
