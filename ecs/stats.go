package ecs

import "sort"

// StorageStats is a point-in-time summary of a Storage.
type StorageStats struct {
	EntityCount    int
	PoolCount      int
	ComponentCount int
	Pools          []PoolStats
}

// PoolStats summarizes one component pool.
type PoolStats struct {
	Type      string
	Len       int
	Cap       int
	ElemSize  uintptr
	Occupancy float64
}

// CollectStats gathers stats for the storage and each of its pools, ordered
// by type name.
func (s *Storage) CollectStats() StorageStats {
	stats := StorageStats{
		EntityCount: s.entities.Len(),
		PoolCount:   len(s.pools),
		Pools:       make([]PoolStats, 0, len(s.pools)),
	}

	for _, pool := range s.pools {
		ps := PoolStats{
			Type: pool.ElementType().Name(),
			Len:  pool.Len(),
			Cap:  pool.Cap(),
		}
		ps.ElemSize = pool.ElementType().Size()
		if ps.Cap > 0 {
			ps.Occupancy = float64(ps.Len) / float64(ps.Cap)
		}
		stats.ComponentCount += ps.Len
		stats.Pools = append(stats.Pools, ps)
	}

	sort.Slice(stats.Pools, func(i, j int) bool {
		return stats.Pools[i].Type < stats.Pools[j].Type
	})
	return stats
}
