package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/pkg/errors"
	"github.com/plus3/poolecs/ecs"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

type Report struct {
	// Configuration
	Duration      time.Duration
	Capacity      int
	Entities      int
	OpsPerTick    int
	Seed          int64
	RecycleIds    bool
	ValidateEvery int

	// Results
	TotalUpdates int64
	TotalTime    time.Duration
	UpdateTime   Stats
	Validations  int64

	Spawns, Deletes, Adds, Removes int64
	Expired                        int64
	Rejections                     Rejections

	Storage   ecs.StorageStats
	Scheduler *ecs.SchedulerStats

	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}
	s.Min = lo.Min(s.Samples)
	s.Max = lo.Max(s.Samples)
	s.Avg = lo.Sum(s.Samples) / time.Duration(len(s.Samples))
}

// Rejections counts the pool operations a flush refused, by kind.
type Rejections struct {
	Capacity      int
	AlreadyExists int
	NotFound      int
	Other         int
}

func (r *Rejections) Add(err error) {
	for _, e := range multierr.Errors(err) {
		switch {
		case errors.Is(e, ecs.ErrCapacityExceeded):
			r.Capacity++
		case errors.Is(e, ecs.ErrAlreadyExists):
			r.AlreadyExists++
		case errors.Is(e, ecs.ErrNotFound):
			r.NotFound++
		default:
			r.Other++
		}
	}
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Pool Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Pool Capacity:** {{.Capacity}}
- **Initial Entities:** {{.Entities}}
- **Ops per Frame:** {{.OpsPerTick}}
- **Seed:** {{.Seed}}
- **Recycle Ids:** {{.RecycleIds}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Test Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}
{{range .Scheduler.Systems}}  - {{.Name}}: avg {{.AvgDuration}}, max {{.MaxDuration}}
{{end}}
## Operations
- Spawns: {{.Spawns}}, Deletes: {{.Deletes}}, Adds: {{.Adds}}, Removes: {{.Removes}}, Expired: {{.Expired}}
- Rejected: capacity {{.Rejections.Capacity}}, already exists {{.Rejections.AlreadyExists}}, not found {{.Rejections.NotFound}}, other {{.Rejections.Other}}
- Invariant checks passed: {{.Validations}}

## Pools ({{.Storage.EntityCount}} live entities)
{{range .Storage.Pools}}- {{.Type}}: {{.Len}}/{{.Cap}} ({{pct .Occupancy}}, {{.ElemSize}} B/elem)
{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
- Total GC Pause: {{ns .MemStatsEnd.PauseTotalNs}}
`

	fm := template.FuncMap{
		"pct": func(v float64) string {
			return fmt.Sprintf("%.1f%%", v*100)
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(tmpl.Execute(w, r))
}
