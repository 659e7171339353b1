package metrics

import (
	"auction/game"
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Start(4, 2, game.Sampling{Mode: game.Sampled, Samples: 3})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.AddLeaf()
				c.AddPropagation()
			}
			c.AddSteal()
			c.ObserveTable(i * 10)
		}(i)
	}
	wg.Wait()
	c.AddExpansion()
	c.AddChance()

	m := c.Complete()
	require.NotEmpty(t, m.ID)
	require.Equal(t, 4, m.Workers)
	require.Equal(t, 2, m.Horizon)
	require.Equal(t, 800, m.Leaves)
	require.Equal(t, 800, m.Propagations)
	require.Equal(t, 8, m.Steals)
	require.Equal(t, 70, m.PeakTable)
	require.Equal(t, 1, m.Expansions)
	require.Equal(t, 1, m.ChanceNodes)

	c.Start(1, 1, game.Sampling{})
	again := c.Complete()
	require.Zero(t, again.Leaves, "Start should reset the counters")
	require.NotEqual(t, m.ID, again.ID)

	require.Equal(t, SearchMetric{}, NewDummyCollector().Complete())
}

func TestWriter(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root, "strength")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "strength"), filepath.Dir(w.Dir()))

	err = w.WriteAgentConfigs([]AgentConfig{
		{ID: 0, Kind: "random"},
		{ID: 1, Kind: "parallel", Workers: 8, Horizon: 2, Sampling: game.Sampling{Mode: game.Sampled, Samples: 4}, Samples: 8},
	})
	require.NoError(t, err)

	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	err = w.WriteGameRecords([]GameRecord{{
		Matchup: 1,
		Agents:  []int{0, 1, 1},
		GameMetric: GameMetric{
			ID:         "g1",
			Winners:    []int{1, 2},
			Tally:      []int{40, 55, 55},
			StartTime:  start,
			EndTime:    start.Add(time.Second),
			Duration:   time.Second,
			TotalMoves: 42,
		},
	}})
	require.NoError(t, err)

	err = w.WriteMoveRecords([]MoveRecord{{
		Game: "g1",
		MoveMetric: MoveMetric{
			Step:         3,
			Player:       2,
			Phase:        game.BidPhase,
			Action:       5,
			SearchMetric: SearchMetric{ID: "s1", Workers: 8, Leaves: 12, PeakTable: 7},
		},
	}})
	require.NoError(t, err)

	configs := readCSV(t, filepath.Join(w.Dir(), "agent_configs.csv"))
	require.Len(t, configs, 3)
	require.Equal(t, []string{"1", "parallel", "8", "2", "sampled", "4", "8", "0"}, configs[2])

	games := readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
	require.Len(t, games, 2)
	require.Equal(t, []string{"g1", "1", "0 1 1", "0", "1 2", "40 55 55", "2024-01-02T03:04:05Z", "2024-01-02T03:04:06Z", "1s", "42"}, games[1])

	moves := readCSV(t, filepath.Join(w.Dir(), "move_records.csv"))
	require.Len(t, moves, 2)
	require.Equal(t, "game", moves[0][0])
	require.Equal(t, []string{"g1", "3", "0", "2", "Bid", "5", "s1", "8", "0s", "0", "0", "12", "0", "0", "7"}, moves[1])
}
