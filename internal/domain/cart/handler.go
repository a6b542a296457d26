package cart

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/carts/:customerId", h.GetCart)
	api.POST("/carts/:customerId/lines", h.AddLine)
	api.DELETE("/carts/:customerId/lines/:medicineId", h.RemoveLine)
	api.POST("/carts/:customerId/lines/:medicineId/approve", h.ApproveLine)
}

type addLineRequest struct {
	MedicineID uuid.UUID `json:"medicine_id"`
	Quantity   int       `json:"quantity"`
}

func (h *Handler) AddLine(c echo.Context) error {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}

	var req addLineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.MedicineID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "medicine_id is required")
	}

	line, err := h.svc.AddLine(c.Request().Context(), customerID, req.MedicineID, req.Quantity)
	if err != nil {
		if errors.Is(err, ErrInvalidQuantity) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusCreated, line)
}

func (h *Handler) RemoveLine(c echo.Context) error {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}
	medicineID, err := uuid.Parse(c.Param("medicineId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid medicine id")
	}

	if err := h.svc.RemoveLine(c.Request().Context(), customerID, medicineID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetCart(c echo.Context) error {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}

	lines, err := h.svc.Get(c.Request().Context(), customerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var totalCents int64
	for _, l := range lines {
		totalCents += l.SubtotalCents()
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"customer_id": customerID,
		"lines":       lines,
		"total_cents": totalCents,
	})
}

func (h *Handler) ApproveLine(c echo.Context) error {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}
	medicineID, err := uuid.Parse(c.Param("medicineId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid medicine id")
	}

	if err := h.svc.Approve(c.Request().Context(), customerID, medicineID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "cart line not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
