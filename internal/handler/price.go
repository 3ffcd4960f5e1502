package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront-pricing/internal/domain/cart"
	"github.com/xenking/storefront-pricing/internal/domain/checkout"
)

// PricePreview prices a cart without touching the redemption ledger. Staff
// line overrides are applied to unit prices before the engine runs.
func (h *Handler) PricePreview(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCartRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	c := req.Cart
	c.Lines = cart.ApplyOverrides(c.Lines, req.Overrides)

	ev, err := h.checkout.Preview(r.Context(), &c)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart),
			errors.Is(err, checkout.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			internalError(w, r, err)
		}
		return
	}

	e := &jx.Encoder{}
	encodeEvaluation(e, ev)
	writeJSON(w, http.StatusOK, e)
}
