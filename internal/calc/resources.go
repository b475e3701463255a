package calc

import "github.com/alexanderramin/taskup/internal/domain"

// LowStockRatio is the share of a resource's total below which a resource
// that is still available counts as running low.
const LowStockRatio = 0.2

// ResourceStats counts a project's resources by type and stock level.
type ResourceStats struct {
	Total      int                         `json:"total"`
	ByType     map[domain.ResourceType]int `json:"by_type"`
	Available  int                         `json:"available"`
	LowStock   int                         `json:"low_stock"`
	OutOfStock int                         `json:"out_of_stock"`
}

func SummarizeResources(resources []*domain.Resource) ResourceStats {
	s := ResourceStats{Total: len(resources), ByType: make(map[domain.ResourceType]int)}
	for _, r := range resources {
		s.ByType[r.Type]++
		switch {
		case r.Available <= 0:
			s.OutOfStock++
		case r.Available < r.Total*LowStockRatio:
			s.Available++
			s.LowStock++
		default:
			s.Available++
		}
	}
	return s
}
