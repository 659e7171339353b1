package metrics

import (
	"auction/game"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// AgentConfig describes one seat's controller in an experiment.
type AgentConfig struct {
	ID         int
	Kind       string // random, maxn, parallel or cfr
	Workers    int
	Horizon    int
	Sampling   game.Sampling
	Samples    int // Opposing offers drawn per sale
	Iterations int // CFR+ iterations per sale
}

type GameRecord struct {
	Matchup int
	Agents  []int // AgentConfig.ID per seat
	GameMetric
}

type MoveRecord struct {
	Game string // GameMetric.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates root/name/<timestamp> to hold the experiment's records.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "kind", "workers", "horizon", "sampling", "reveal_samples", "sale_samples", "cfr_iterations"}
	return write(w, "agent_configs.csv", header, configs, func(c AgentConfig) []string {
		return []string{
			strconv.Itoa(c.ID),
			c.Kind,
			strconv.Itoa(c.Workers),
			strconv.Itoa(c.Horizon),
			c.Sampling.Mode.String(),
			strconv.Itoa(c.Sampling.Samples),
			strconv.Itoa(c.Samples),
			strconv.Itoa(c.Iterations),
		}
	})
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "matchup", "agents", "starting_player", "winners", "tally", "start_time", "end_time", "duration", "moves"}
	return write(w, "game_records.csv", header, records, func(r GameRecord) []string {
		return []string{
			r.ID,
			strconv.Itoa(r.Matchup),
			joinInts(r.Agents),
			strconv.Itoa(r.StartingPlayer),
			joinInts(r.Winners),
			joinInts(r.Tally),
			r.StartTime.Format(time.RFC3339),
			r.EndTime.Format(time.RFC3339),
			r.Duration.String(),
			strconv.Itoa(r.TotalMoves),
		}
	})
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "round", "player", "phase", "action", "search", "workers", "duration",
		"expansions", "chance_nodes", "leaves", "propagations", "steals", "peak_table"}
	return write(w, "move_records.csv", header, records, func(r MoveRecord) []string {
		return []string{
			r.Game,
			strconv.Itoa(r.Step),
			strconv.Itoa(r.Round),
			strconv.Itoa(r.Player),
			r.Phase.String(),
			strconv.Itoa(int(r.Action)),
			r.ID,
			strconv.Itoa(r.Workers),
			r.Duration.String(),
			strconv.Itoa(r.Expansions),
			strconv.Itoa(r.ChanceNodes),
			strconv.Itoa(r.Leaves),
			strconv.Itoa(r.Propagations),
			strconv.Itoa(r.Steals),
			strconv.Itoa(r.PeakTable),
		}
	})
}

func write[T any](w *Writer, file string, header []string, rows []T, format func(T) []string) error {
	path := filepath.Join(w.baseDir, file)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", file, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", file, err)
	}
	for _, row := range rows {
		err = writer.Write(format(row))
		if err != nil {
			return fmt.Errorf("failed to write %s row: %w", file, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", file, err)
	}
	return nil
}

func joinInts(values []int) string {
	return strings.Join(lo.Map(values, func(v int, _ int) string { return strconv.Itoa(v) }), " ")
}
