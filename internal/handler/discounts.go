package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/xenking/storefront-pricing/internal/domain/discount"
)

// ListDiscounts returns the active discount catalog for the back office.
func (h *Handler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	rules, err := h.discounts.ListCandidates(r.Context(), "")
	if err != nil {
		internalError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.ArrStart()
	for i := range rules {
		encodeRule(e, &rules[i])
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, e)
}

func encodeRule(e *jx.Encoder, r *discount.Rule) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(r.ID)
	e.FieldStart("code")
	e.Str(r.Code)
	e.FieldStart("kind")
	e.Str(string(r.Kind))
	e.FieldStart("amountKind")
	e.Str(string(r.AmountKind))
	e.FieldStart("value")
	e.Str(r.Value.String())
	e.FieldStart("automatic")
	e.Bool(r.Automatic)
	e.FieldStart("startsAt")
	e.Str(r.StartsAt.Format(time.RFC3339))
	if r.EndsAt != nil {
		e.FieldStart("endsAt")
		e.Str(r.EndsAt.Format(time.RFC3339))
	}
	if r.Caps.LimitUses {
		e.FieldStart("maxUses")
		e.Int(r.Caps.MaxUses)
		e.FieldStart("uses")
		e.Int(r.Uses)
	}
	if r.Description != "" {
		e.FieldStart("description")
		e.Str(r.Description)
	}
	e.ObjEnd()
}
