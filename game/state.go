package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/rand"
)

type Phase int

const (
	BidPhase Phase = iota
	SellPhase
)

func (p Phase) String() string {
	if p == BidPhase {
		return "Bid"
	}
	return "Sell"
}

const (
	MinPlayers = 3
	MaxPlayers = 6

	separator = "|"
	origin    = separator + "O"
)

// Coins each player starts with, by player count.
var startingCoins = map[int]int{3: 28, 4: 21, 5: 16, 6: 14}

// GameState is one position of the game. Transitions never mutate the
// receiver: they return a deep copy with the change applied.
type GameState struct {
	Phase               Phase
	Coins               []int   // Uncommitted coins per player
	Properties          [][]int // Properties per player, ascending
	Checks              [][]int // Checks per player, ascending
	ActiveBids          []int   // Coins committed to the live auction per player
	ActivePlayers       []bool  // Players still bidding in the live auction
	CurrentPlayer       int
	PreviousPlayer      int   // -1 before the first decision
	AuctionPool         []int // Revealed, unclaimed items, descending
	RemainingProperties []int // Undrawn properties, top of the deck last
	RemainingChecks     []int // Undrawn checks, top of the deck last
	RoundNo             int
	TurnNo              int
	PathEncoding        string
}

func PropertyDeck() []int {
	deck := make([]int, 30)
	for i := range deck {
		deck[i] = i + 1
	}
	return deck
}

// CheckDeck holds two checks of every value in 0 and 2..15.
func CheckDeck() []int {
	deck := make([]int, 0, 30)
	for v := 0; v <= 15; v++ {
		if v == 1 {
			continue
		}
		deck = append(deck, v, v)
	}
	return deck
}

// NewGameState shuffles both decks with rng and deals a fresh game.
func NewGameState(players, startingPlayer int, rng *rand.Rand) *GameState {
	properties := PropertyDeck()
	rng.Shuffle(len(properties), func(i, j int) {
		properties[i], properties[j] = properties[j], properties[i]
	})
	checks := CheckDeck()
	rng.Shuffle(len(checks), func(i, j int) {
		checks[i], checks[j] = checks[j], checks[i]
	})
	return NewGameStateFromDecks(players, startingPlayer, properties, checks)
}

// NewGameStateFromDecks deals a fresh game from already ordered decks. Cards
// beyond the largest multiple of the player count are discarded from the
// bottom of each deck.
func NewGameStateFromDecks(players, startingPlayer int, properties, checks []int) *GameState {
	coins, ok := startingCoins[players]
	if !ok {
		panic(fmt.Sprintf("unsupported player count %d", players))
	}
	if startingPlayer < 0 || startingPlayer >= players {
		panic(fmt.Sprintf("starting player %d out of range", startingPlayer))
	}

	gs := &GameState{
		Phase:               BidPhase,
		Coins:               make([]int, players),
		Properties:          make([][]int, players),
		Checks:              make([][]int, players),
		ActiveBids:          make([]int, players),
		ActivePlayers:       make([]bool, players),
		CurrentPlayer:       startingPlayer,
		PreviousPlayer:      -1,
		AuctionPool:         []int{},
		RemainingProperties: slices.Clone(properties[len(properties)%players:]),
		RemainingChecks:     slices.Clone(checks[len(checks)%players:]),
		RoundNo:             0,
		TurnNo:              1,
		PathEncoding:        origin,
	}
	for p := 0; p < players; p++ {
		gs.Coins[p] = coins
		gs.Properties[p] = []int{}
		gs.Checks[p] = []int{}
		gs.ActivePlayers[p] = true
	}
	return gs
}

func (gs *GameState) Copy() *GameState {
	return &GameState{
		Phase:               gs.Phase,
		Coins:               slices.Clone(gs.Coins),
		Properties:          cloneHoldings(gs.Properties),
		Checks:              cloneHoldings(gs.Checks),
		ActiveBids:          slices.Clone(gs.ActiveBids),
		ActivePlayers:       slices.Clone(gs.ActivePlayers),
		CurrentPlayer:       gs.CurrentPlayer,
		PreviousPlayer:      gs.PreviousPlayer,
		AuctionPool:         slices.Clone(gs.AuctionPool),
		RemainingProperties: slices.Clone(gs.RemainingProperties),
		RemainingChecks:     slices.Clone(gs.RemainingChecks),
		RoundNo:             gs.RoundNo,
		TurnNo:              gs.TurnNo,
		PathEncoding:        gs.PathEncoding,
	}
}

func cloneHoldings(holdings [][]int) [][]int {
	out := make([][]int, len(holdings))
	for i, h := range holdings {
		out[i] = slices.Clone(h)
	}
	return out
}

func (gs *GameState) Player() int {
	return gs.CurrentPlayer
}

func (gs *GameState) NumPlayers() int {
	return len(gs.Coins)
}

func (gs *GameState) Round() int {
	return gs.RoundNo
}

func (gs *GameState) RoundOver() bool {
	return len(gs.AuctionPool) == 0
}

func (gs *GameState) Final() bool {
	return gs.Phase == SellPhase
}

func (gs *GameState) GameOver() bool {
	return gs.Phase == SellPhase && gs.RoundOver() && len(gs.RemainingChecks) == 0
}

func (gs *GameState) LegalMoves() []Action {
	if gs.Phase == SellPhase {
		return gs.LegalMovesSell(gs.CurrentPlayer)
	}
	return gs.LegalMovesBid(gs.CurrentPlayer)
}

// Play applies a bid for the current player. Sales are simultaneous and go
// through TransitionSell instead.
func (gs *GameState) Play(action Action) State {
	if gs.Phase == SellPhase {
		panic("sales must be played with TransitionSell")
	}
	return gs.TransitionBid(gs.CurrentPlayer, action)
}

func (gs *GameState) Outcomes(sampling Sampling, rng *rand.Rand) []State {
	reveals := gs.RevealPermutations(sampling, rng)
	states := make([]State, len(reveals))
	for i, r := range reveals {
		states[i] = r
	}
	return states
}

func (gs *GameState) Encoding() string {
	return gs.PathEncoding
}

// ParentEncoding strips the last segment of an encoding. The origin has no
// parent and yields "".
func ParentEncoding(key string) string {
	i := strings.LastIndex(key, separator)
	if i <= 0 {
		return ""
	}
	return key[:i]
}

// Tally is each player's final worth: checks plus coins.
func (gs *GameState) Tally() []int {
	tally := make([]int, gs.NumPlayers())
	for p := range tally {
		tally[p] = lo.Sum(gs.Checks[p]) + gs.Coins[p]
	}
	return tally
}

// Winners lists every player sharing the highest tally.
func (gs *GameState) Winners() []int {
	tally := gs.Tally()
	best := lo.Max(tally)
	winners := []int{}
	for p, v := range tally {
		if v == best {
			winners = append(winners, p)
		}
	}
	return winners
}

func (gs *GameState) String() string {
	return fmt.Sprintf("%s|c%v|p%v|ch%v|b%v|a%v|r%d|t%d",
		gs.Phase, gs.Coins, gs.Properties, gs.Checks, gs.ActiveBids, gs.AuctionPool, gs.RoundNo, gs.TurnNo)
}

func (gs *GameState) checkPlayer(player int) {
	if player < 0 || player >= gs.NumPlayers() {
		panic(fmt.Sprintf("player %d out of range [0, %d)", player, gs.NumPlayers()))
	}
}

// nextActive returns the next active player after from in seating order.
func (gs *GameState) nextActive(from int) int {
	n := gs.NumPlayers()
	for i := 1; i <= n; i++ {
		p := (from + i) % n
		if gs.ActivePlayers[p] {
			return p
		}
	}
	panic("no active bidder left")
}

func insertSorted(values []int, v int) []int {
	i, _ := slices.BinarySearch(values, v)
	return slices.Insert(values, i, v)
}

func removeValue(values []int, v int) []int {
	i := slices.Index(values, v)
	if i < 0 {
		panic(fmt.Sprintf("value %d not held", v))
	}
	return slices.Delete(values, i, i+1)
}

func joinValues[T ~int](values []T) string {
	return strings.Join(lo.Map(values, func(v T, _ int) string {
		return fmt.Sprint(int(v))
	}), ":")
}
