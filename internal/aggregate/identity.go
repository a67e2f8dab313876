package aggregate

import (
	"sort"
	"strings"

	"github.com/pantera/orderprep/backend-go/internal/source"
)

// keySeparator joins SKU and item ID into a composite key. Double underscore
// keeps the parts recoverable for debugging without colliding with SKU text.
const keySeparator = "__"

// fingerprintLen bounds the content-fingerprint fallback key.
const fingerprintLen = 64

// ItemKey derives the stable per-item key used to reconcile rows across all
// sources. The same logical item must yield the same key from every source;
// a mismatch silently splits it into duplicate aggregates.
//
// Fallback chain: sku+id, then whichever of the two exists, then the item
// name, then a bounded content fingerprint of the row. The fingerprint
// guarantees a key always exists, at the acknowledged risk that unrelated
// rows with identical truncated content collide.
func ItemKey(r source.Row) string {
	sku := source.Resolve(r, source.FieldSKU)
	id := source.Resolve(r, source.FieldItemID)
	switch {
	case sku != "" && id != "":
		return sku + keySeparator + id
	case sku != "":
		return sku
	case id != "":
		return id
	}
	if name := source.Resolve(r, source.FieldItemName); name != "" {
		return name
	}
	return fingerprint(r)
}

func fingerprint(r source.Row) string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	var b strings.Builder
	for _, c := range cols {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c)
		b.WriteByte('=')
		b.WriteString(r[c])
		if b.Len() >= fingerprintLen {
			break
		}
	}
	s := b.String()
	if len(s) > fingerprintLen {
		s = s[:fingerprintLen]
	}
	return s
}
