package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// OfferHandler covers the manager CRUD for add-on offers.
type OfferHandler struct {
	Offers *repository.OfferRepo
}

func NewOfferHandler(offers *repository.OfferRepo) *OfferHandler {
	if offers == nil {
		panic("nil repository passed to NewOfferHandler")
	}
	return &OfferHandler{Offers: offers}
}

type offerReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	OfferType   string `json:"offer_type"`
	IsActive    *bool  `json:"is_active"`
}

type offerResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	OfferType   string    `json:"offer_type"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toOfferResp(o *model.Offer) offerResp {
	return offerResp{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		PriceCents:  o.PriceCents,
		OfferType:   o.OfferType,
		IsActive:    o.IsActive,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toOfferList(offers []model.Offer) []offerResp {
	out := make([]offerResp, 0, len(offers))
	for i := range offers {
		out = append(out, toOfferResp(&offers[i]))
	}
	return out
}

func (req *offerReq) validate() map[string]string {
	problems := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		problems["name"] = "required"
	}
	if req.PriceCents < 0 {
		problems["price_cents"] = "must not be negative"
	}
	t := strings.ToUpper(strings.TrimSpace(req.OfferType))
	if t != model.OfferTypeGlobal && t != model.OfferTypeRoomSpecific {
		problems["offer_type"] = "must be GLOBAL or ROOM_SPECIFIC"
	}
	return problems
}

// List returns every offer.
func (h *OfferHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	offers, err := h.Offers.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list offers failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"offers": toOfferList(offers)})
}

// Get returns one offer.
func (h *OfferHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o, err := h.Offers.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load offer failed"})
	}
	return c.JSON(http.StatusOK, toOfferResp(&o))
}

// Create adds an offer.
func (h *OfferHandler) Create(c echo.Context) error {
	var req offerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if problems := req.validate(); len(problems) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": problems})
	}
	o := model.Offer{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		PriceCents:  req.PriceCents,
		OfferType:   strings.ToUpper(strings.TrimSpace(req.OfferType)),
		IsActive:    true,
	}
	if req.IsActive != nil {
		o.IsActive = *req.IsActive
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Offers.Create(ctx, &o); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create offer failed"})
	}
	return c.JSON(http.StatusCreated, toOfferResp(&o))
}

// Update rewrites an offer.
func (h *OfferHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req offerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if problems := req.validate(); len(problems) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": problems})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o, err := h.Offers.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load offer failed"})
	}
	o.Name = strings.TrimSpace(req.Name)
	o.Description = strings.TrimSpace(req.Description)
	o.PriceCents = req.PriceCents
	o.OfferType = strings.ToUpper(strings.TrimSpace(req.OfferType))
	if req.IsActive != nil {
		o.IsActive = *req.IsActive
	}
	if err := h.Offers.Update(ctx, &o); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update offer failed"})
	}
	return c.JSON(http.StatusOK, toOfferResp(&o))
}

// Delete removes an offer.  Past bookings keep their price snapshot.
func (h *OfferHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Offers.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete offer failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
