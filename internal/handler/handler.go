// Package handler exposes the pricing engine over HTTP: cart preview, order
// commit, and a back-office discount listing. Bodies are encoded and decoded
// with go-faster/jx.
package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront-pricing/internal/domain/checkout"
	"github.com/xenking/storefront-pricing/internal/domain/discount"
)

// Handler serves the pricing API, delegating business logic to the checkout
// service and the discount repository.
type Handler struct {
	checkout  *checkout.Service
	discounts discount.Repository
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(checkoutSvc *checkout.Service, discounts discount.Repository) *Handler {
	return &Handler{
		checkout:  checkoutSvc,
		discounts: discounts,
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/price", h.PricePreview)
	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	mux.HandleFunc("GET /api/discounts", h.ListDiscounts)
}

// writeJSON writes an encoded jx payload with the given status code.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes a {code, message} error body.
func writeError(w http.ResponseWriter, status int, message string) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, status, e)
}

// internalError logs err and responds 500 without leaking details.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}
