package engine

import (
    "strconv"

    "github.com/iliyamo/venue-ticketing/internal/model"
)

// palette holds the fixed display colors handed out to distinct price
// points in first-come order.  Once the palette is exhausted the colors
// are reused round-robin.
var palette = []string{
    "#e74c3c", "#3498db", "#2ecc71", "#f39c12", "#9b59b6",
    "#1abc9c", "#e67e22", "#34495e", "#fd79a8", "#16a085",
}

// priceKey normalizes a price to the map key used in PriceColorMap.
func priceKey(cents uint32) string {
    return strconv.FormatUint(uint64(cents), 10)
}

// RefreshPriceColors walks the seat grid in row-major order and assigns a
// palette color to every price value that does not have one yet.  A price
// keeps its color for the life of the project; colors are never
// reassigned, so renderers can rely on them staying stable across
// mutations.
func RefreshPriceColors(p *model.Project) {
    p.EachSeat(func(s *model.Seat) {
        if s.PriceCents == nil {
            return
        }
        key := priceKey(*s.PriceCents)
        if p.PriceColorMap == nil {
            p.PriceColorMap = make(map[string]string)
        }
        if _, ok := p.PriceColorMap[key]; !ok {
            p.PriceColorMap[key] = palette[len(p.PriceColorMap)%len(palette)]
        }
    })
}
