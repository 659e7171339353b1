package metrics

import (
	"auction/game"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type SearchMetric struct {
	ID           string
	Workers      int
	Horizon      int
	Sampling     game.Sampling
	Duration     time.Duration
	Expansions   int // Decision nodes expanded
	ChanceNodes  int
	Leaves       int
	Propagations int
	Steals       int
	PeakTable    int // Most score table entries alive at once
}

type MoveMetric struct {
	Step   int
	Round  int
	Player int
	Phase  game.Phase
	Action game.Action
	SearchMetric
}

type GameMetric struct {
	ID             string
	StartingPlayer int
	Winners        []int
	Tally          []int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(workers, horizon int, sampling game.Sampling)
	AddExpansion()
	AddChance()
	AddLeaf()
	AddPropagation()
	AddSteal()
	ObserveTable(size int)
	Complete() SearchMetric
}

type collector struct {
	id           string
	workers      int
	horizon      int
	sampling     game.Sampling
	startTime    time.Time
	expansions   atomic.Int64
	chanceNodes  atomic.Int64
	leaves       atomic.Int64
	propagations atomic.Int64
	steals       atomic.Int64
	peakTable    atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

// Start resets the counters for a new search.
func (m *collector) Start(workers, horizon int, sampling game.Sampling) {
	m.id = uuid.NewString()
	m.startTime = time.Now()
	m.workers = workers
	m.horizon = horizon
	m.sampling = sampling
	m.expansions.Store(0)
	m.chanceNodes.Store(0)
	m.leaves.Store(0)
	m.propagations.Store(0)
	m.steals.Store(0)
	m.peakTable.Store(0)
}

func (m *collector) AddExpansion() {
	m.expansions.Add(1)
}

func (m *collector) AddChance() {
	m.chanceNodes.Add(1)
}

func (m *collector) AddLeaf() {
	m.leaves.Add(1)
}

func (m *collector) AddPropagation() {
	m.propagations.Add(1)
}

func (m *collector) AddSteal() {
	m.steals.Add(1)
}

func (m *collector) ObserveTable(size int) {
	for {
		peak := m.peakTable.Load()
		if int64(size) <= peak || m.peakTable.CompareAndSwap(peak, int64(size)) {
			return
		}
	}
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		ID:           m.id,
		Workers:      m.workers,
		Horizon:      m.horizon,
		Sampling:     m.sampling,
		Duration:     time.Since(m.startTime),
		Expansions:   int(m.expansions.Load()),
		ChanceNodes:  int(m.chanceNodes.Load()),
		Leaves:       int(m.leaves.Load()),
		Propagations: int(m.propagations.Load()),
		Steals:       int(m.steals.Load()),
		PeakTable:    int(m.peakTable.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(workers, horizon int, sampling game.Sampling) {}
func (m *dummyCollector) AddExpansion()                                      {}
func (m *dummyCollector) AddChance()                                         {}
func (m *dummyCollector) AddLeaf()                                           {}
func (m *dummyCollector) AddPropagation()                                    {}
func (m *dummyCollector) AddSteal()                                          {}
func (m *dummyCollector) ObserveTable(size int)                              {}
func (m *dummyCollector) Complete() SearchMetric                             { return SearchMetric{} }
