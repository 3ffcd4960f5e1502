package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront-pricing/internal/domain/cart"
	"github.com/xenking/storefront-pricing/internal/domain/checkout"
)

// PlaceOrder commits an order: prices the cart, reserves redemptions for the
// applied discounts, and persists the snapshot. A discount that hit its cap
// between preview and commit yields 409 so the client can re-price and retry.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCartRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	c := req.Cart
	c.Lines = cart.ApplyOverrides(c.Lines, req.Overrides)

	o, err := h.checkout.PlaceOrder(r.Context(), &c)
	if err != nil {
		var unavailable *checkout.DiscountUnavailableError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart),
			errors.Is(err, checkout.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &unavailable):
			writeError(w, http.StatusConflict, unavailable.Error())
		default:
			internalError(w, r, err)
		}
		return
	}

	e := &jx.Encoder{}
	encodeOrder(e, o)
	writeJSON(w, http.StatusCreated, e)
}
