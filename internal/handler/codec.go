package handler

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-pricing/internal/domain/cart"
	"github.com/xenking/storefront-pricing/internal/domain/checkout"
	"github.com/xenking/storefront-pricing/internal/domain/pricing"
)

// cartRequest is the decoded body of price and order requests: the cart plus
// optional staff overrides keyed by line position.
type cartRequest struct {
	Cart      cart.Cart
	Overrides map[int]cart.Override
}

// decodeCartRequest parses a cart payload:
//
//	{
//	  "customerId": "...", "couponCode": "...",
//	  "shippingCents": 500, "shippingCountry": "US",
//	  "lines": [{"variantId": "...", "productId": "...", "collectionIds": [...],
//	             "quantity": 2, "unitPriceCents": 1000,
//	             "compareAtPriceCents": 1200,
//	             "override": {"kind": "amount", "cents": 100, "reason": "..."}}]
//	}
func decodeCartRequest(body io.Reader) (*cartRequest, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}

	req := &cartRequest{Overrides: map[int]cart.Override{}}
	d := jx.DecodeBytes(raw)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "customerId":
			req.Cart.CustomerID, err = d.Str()
			return err
		case "couponCode":
			req.Cart.CouponCode, err = d.Str()
			return err
		case "shippingCents":
			req.Cart.ShippingCents, err = d.Int64()
			return err
		case "shippingCountry":
			req.Cart.ShippingCountry, err = d.Str()
			return err
		case "lines":
			return d.Arr(func(d *jx.Decoder) error {
				line, override, err := decodeLine(d)
				if err != nil {
					return err
				}
				req.Cart.Lines = append(req.Cart.Lines, line)
				if override != nil {
					req.Overrides[len(req.Cart.Lines)-1] = *override
				}
				return nil
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}

	return req, nil
}

func decodeLine(d *jx.Decoder) (cart.Line, *cart.Override, error) {
	var (
		line     cart.Line
		override *cart.Override
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "variantId":
			line.VariantID, err = d.Str()
		case "productId":
			line.ProductID, err = d.Str()
		case "collectionIds":
			err = d.Arr(func(d *jx.Decoder) error {
				id, err := d.Str()
				if err != nil {
					return err
				}
				line.CollectionIDs = append(line.CollectionIDs, id)
				return nil
			})
		case "quantity":
			line.Quantity, err = d.Int()
		case "unitPriceCents":
			line.UnitPriceCents, err = d.Int64()
		case "compareAtPriceCents":
			var v int64
			v, err = d.Int64()
			line.CompareAtPriceCents = &v
		case "override":
			var o cart.Override
			o, err = decodeOverride(d)
			override = &o
		default:
			err = d.Skip()
		}
		return err
	})
	return line, override, err
}

func decodeOverride(d *jx.Decoder) (cart.Override, error) {
	var o cart.Override
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "kind":
			var kind string
			kind, err = d.Str()
			o.Kind = cart.OverrideKind(kind)
		case "cents":
			o.Cents, err = d.Int64()
		case "percent":
			var num jx.Num
			num, err = d.Num()
			if err == nil {
				o.Percent, err = decimal.NewFromString(num.String())
			}
		case "reason":
			o.Reason, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	return o, err
}

// encodeEvaluation writes a preview response: the breakdown plus the applied
// and excluded rule diagnostics.
func encodeEvaluation(e *jx.Encoder, ev *pricing.Evaluation) {
	e.ObjStart()
	encodeResultFields(e, &ev.Result)
	encodeExcluded(e, ev.Excluded)
	e.ObjEnd()
}

func encodeResultFields(e *jx.Encoder, res *pricing.Result) {
	e.FieldStart("subtotalCents")
	e.Int64(res.SubtotalCents)

	e.FieldStart("perLineDiscountCents")
	e.ArrStart()
	for _, v := range res.PerLineDiscountCents {
		e.Int64(v)
	}
	e.ArrEnd()

	e.FieldStart("productDiscountCents")
	e.Int64(res.ProductDiscountCents)
	e.FieldStart("orderDiscountCents")
	e.Int64(res.OrderDiscountCents)
	e.FieldStart("shippingDiscountCents")
	e.Int64(res.ShippingDiscountCents)
	e.FieldStart("finalShippingCents")
	e.Int64(res.FinalShippingCents)
	e.FieldStart("totalCents")
	e.Int64(res.TotalCents)

	e.FieldStart("applied")
	e.ArrStart()
	for _, a := range res.Applied {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(a.ID)
		e.FieldStart("code")
		e.Str(a.Code)
		e.FieldStart("kind")
		e.Str(string(a.Kind))
		e.ObjEnd()
	}
	e.ArrEnd()
}

func encodeExcluded(e *jx.Encoder, excluded []pricing.Excluded) {
	e.FieldStart("excluded")
	e.ArrStart()
	for _, x := range excluded {
		e.ObjStart()
		e.FieldStart("code")
		e.Str(x.Code)
		e.FieldStart("reason")
		e.Str(string(x.Reason))
		e.ObjEnd()
	}
	e.ArrEnd()
}

// encodeOrder writes the committed order snapshot.
func encodeOrder(e *jx.Encoder, o *checkout.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("subtotalCents")
	e.Int64(o.SubtotalCents)
	e.FieldStart("discountCents")
	e.Int64(o.DiscountCents)
	e.FieldStart("shippingCents")
	e.Int64(o.ShippingCents)
	e.FieldStart("totalCents")
	e.Int64(o.TotalCents)
	if o.CouponCode != "" {
		e.FieldStart("couponCode")
		e.Str(o.CouponCode)
	}

	e.FieldStart("applied")
	e.ArrStart()
	for _, a := range o.Metadata.Applied {
		e.ObjStart()
		e.FieldStart("code")
		e.Str(a.Code)
		e.FieldStart("kind")
		e.Str(a.Kind)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}
