package report

import (
	"context"
	"fmt"
)

var storeFields = []string{"name", "brand", "address", "owner", "companyDocument", "logo", "status", "workingHours"}

// StoreInfo returns the public fields of the store snapshot
func (s *Service) StoreInfo(ctx context.Context) (map[string]any, error) {
	info, _, err := cachedResult(ctx, s, StoreFile, "info", false, func() (map[string]any, error) {
		var raw map[string]any
		if err := s.readJSON(StoreFile, &raw); err != nil {
			return nil, fmt.Errorf("failed to load store information: %w", err)
		}

		info := make(map[string]any, len(storeFields))
		for _, field := range storeFields {
			if v, ok := raw[field]; ok {
				info[field] = v
			}
		}
		return info, nil
	})
	return info, err
}
