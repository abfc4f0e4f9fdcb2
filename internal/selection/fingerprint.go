package selection

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"offerbot/internal/catalog"
)

// Fingerprint derives the equality key used for repetition checks: an md5
// over the identity fields in a fixed order. Not a security boundary, just a
// stable short key for comparing offers.
func Fingerprint(o catalog.Offer) string {
	base := strings.Join([]string{
		o.Name,
		o.Price,
		o.DiscountPrice,
		o.Link,
		o.ImageRef(),
	}, "|")
	sum := md5.Sum([]byte(base))
	return hex.EncodeToString(sum[:])
}
