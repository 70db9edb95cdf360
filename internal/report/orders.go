package report

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
)

type orderRecord struct {
	TotalPrice *float64        `json:"totalPrice"`
	CreatedAt  *isoDate        `json:"createdAt"`
	Products   []productRecord `json:"products"`
}

type productRecord struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity"`
}

// OrdersTotal is the body of GET /api/orders/total
type OrdersTotal struct {
	Total  int  `json:"total"`
	Cached bool `json:"cached"`
}

// Revenue is the body of GET /api/orders/revenue
type Revenue struct {
	AmountInCents float64 `json:"amountInCents"`
	Cached        bool    `json:"cached"`
}

// ProductStats counts one product across orders
type ProductStats struct {
	Name          string  `json:"name"`
	Occurrences   int     `json:"occurrences"`
	TotalQuantity float64 `json:"totalQuantity"`
}

// MostOrdered is the body of GET /api/orders/most-ordered
type MostOrdered struct {
	Products []ProductStats `json:"products"`
	Cached   bool           `json:"cached"`
}

func (s *Service) loadOrders() ([]orderRecord, error) {
	var orders []orderRecord
	if err := s.readJSON(OrdersFile, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// OrdersTotal counts orders created inside w
func (s *Service) OrdersTotal(ctx context.Context, w Window) (OrdersTotal, error) {
	total, cached, err := cachedResult(ctx, s, OrdersFile, "total", w.Active(), func() (int, error) {
		orders, err := s.loadOrders()
		if err != nil {
			return 0, err
		}
		if !w.Active() {
			return len(orders), nil
		}
		count := 0
		for _, o := range orders {
			if w.Contains(o.CreatedAt.value()) {
				count++
			}
		}
		return count, nil
	})
	return OrdersTotal{Total: total, Cached: cached}, err
}

// Revenue sums order totals, in cents, for orders created inside w
func (s *Service) Revenue(ctx context.Context, w Window) (Revenue, error) {
	amount, cached, err := cachedResult(ctx, s, OrdersFile, "revenue", w.Active(), func() (float64, error) {
		orders, err := s.loadOrders()
		if err != nil {
			return 0, err
		}
		sum := 0.0
		for _, o := range orders {
			if !w.Contains(o.CreatedAt.value()) {
				continue
			}
			if o.TotalPrice != nil && !math.IsInf(*o.TotalPrice, 0) && !math.IsNaN(*o.TotalPrice) {
				sum += *o.TotalPrice
			}
		}
		return sum, nil
	})
	return Revenue{AmountInCents: amount, Cached: cached}, err
}

// MostOrdered ranks products by how many orders contain them, then by
// quantity. Spelling variants of a name are merged.
func (s *Service) MostOrdered(ctx context.Context, w Window) (MostOrdered, error) {
	products, cached, err := cachedResult(ctx, s, OrdersFile, "most-ordered", w.Active(), func() ([]ProductStats, error) {
		orders, err := s.loadOrders()
		if err != nil {
			return nil, err
		}
		return rankProducts(orders, w), nil
	})
	return MostOrdered{Products: products, Cached: cached}, err
}

type productTally struct {
	occurrences   int
	totalQuantity float64
	spellings     []string
	counts        map[string]int
}

func rankProducts(orders []orderRecord, w Window) []ProductStats {
	tallies := make(map[string]*productTally)
	var order []string

	for _, o := range orders {
		if !w.Contains(o.CreatedAt.value()) {
			continue
		}
		for _, p := range o.Products {
			if p.Name == "" {
				continue
			}

			quantity := 0.0
			if p.Quantity != nil && !math.IsInf(*p.Quantity, 0) && !math.IsNaN(*p.Quantity) {
				quantity = *p.Quantity
			}

			key := normalizeProductName(p.Name)
			tally, ok := tallies[key]
			if !ok {
				tally = &productTally{counts: make(map[string]int)}
				tallies[key] = tally
				order = append(order, key)
			}
			tally.occurrences++
			tally.totalQuantity += quantity
			if tally.counts[p.Name] == 0 {
				tally.spellings = append(tally.spellings, p.Name)
			}
			tally.counts[p.Name]++
		}
	}

	stats := make([]ProductStats, 0, len(order))
	for _, key := range order {
		tally := tallies[key]
		name, best := key, 0
		for _, spelling := range tally.spellings {
			if tally.counts[spelling] > best {
				name, best = spelling, tally.counts[spelling]
			}
		}
		stats = append(stats, ProductStats{
			Name:          name,
			Occurrences:   tally.occurrences,
			TotalQuantity: tally.totalQuantity,
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Occurrences != stats[j].Occurrences {
			return stats[i].Occurrences > stats[j].Occurrences
		}
		return stats[i].TotalQuantity > stats[j].TotalQuantity
	})
	return stats
}

var (
	leadingStars  = regexp.MustCompile(`^\*+\s*`)
	trailingStars = regexp.MustCompile(`\s*\*+$`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	spaceRuns     = regexp.MustCompile(`\s+`)
)

func normalizeProductName(name string) string {
	name = strings.TrimSpace(name)
	name = leadingStars.ReplaceAllString(name, "")
	name = trailingStars.ReplaceAllString(name, "")
	name = trailingDots.ReplaceAllString(name, "")
	name = spaceRuns.ReplaceAllString(name, " ")
	return strings.TrimSpace(strings.ToLower(name))
}
