// Package caption renders the message body for one offer. Lines are emitted
// in a fixed precedence and blank lines are never produced.
package caption

import (
	"fmt"
	"strings"

	"offerbot/internal/catalog"
	"offerbot/internal/price"
)

const (
	titleFormat      = "🏷️ *%s*"
	discountPrefix   = "Agora por: "
	freeShippingLine = "🚚 Frete grátis!"
	linkPrefix       = "👉 "
)

// Compose builds the caption for an offer.
//
// Price precedence: when both price fields parse as amounts, the original
// price is struck through and the discount becomes the active price. A
// non-numeric discount next to a valid price is kept as a free-text
// annotation ("consulte o vendedor"). When nothing parses, whichever raw
// string is non-empty is shown, the price field winning over the discount.
func Compose(o catalog.Offer) string {
	var lines []string

	if name := strings.TrimSpace(o.Name); name != "" {
		lines = append(lines, fmt.Sprintf(titleFormat, name))
	}

	priceOK := price.IsAmount(o.Price)
	discountOK := price.IsAmount(o.DiscountPrice)
	rawPrice := strings.TrimSpace(o.Price)
	rawDiscount := strings.TrimSpace(o.DiscountPrice)

	switch {
	case priceOK && discountOK:
		lines = append(lines,
			"~"+price.NormalizeLabel(o.Price)+"~",
			discountPrefix+price.NormalizeLabel(o.DiscountPrice),
		)
	case priceOK && rawDiscount != "":
		lines = append(lines, price.NormalizeLabel(o.Price), rawDiscount)
	case priceOK:
		lines = append(lines, price.NormalizeLabel(o.Price))
	case discountOK:
		lines = append(lines, discountPrefix+price.NormalizeLabel(o.DiscountPrice))
	case rawPrice != "":
		lines = append(lines, rawPrice)
	case rawDiscount != "":
		lines = append(lines, rawDiscount)
	}

	if o.FreeShipping.Bool() {
		lines = append(lines, freeShippingLine)
	}

	if link := strings.TrimSpace(o.Link); link != "" {
		lines = append(lines, linkPrefix+link)
	}

	return strings.Join(lines, "\n")
}
