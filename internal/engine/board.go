package engine

import (
	"fmt"
	"math/rand/v2"
)

var tileKinds = []TileKind{TileGrass, TileForest, TileMountain, TilePond, TileRocky, TileRough, TileShrub}

var tileBaseWeight = map[TileKind]float64{
	TileGrass:    1,
	TileForest:   1,
	TileMountain: 1,
	TilePond:     0.7,
	TileRocky:    1,
	TileRough:    1,
	TileShrub:    1,
}

const sameKindBonus = 2.2

type Option func(*GameState)

// WithRand sets the random source used for terrain, shuffles and reshuffles.
func WithRand(r *rand.Rand) Option {
	return func(s *GameState) { s.rng = r }
}

func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewGameState builds a fresh match: terrain, strongholds, front units and
// shuffled decks, then runs the first draw. A nil deck for a seat falls back
// to the starting deck truncated to settings.DeckSize. Decks are expected to
// be sanitized already.
func NewGameState(settings Settings, decks [2][]CardDefID, opts ...Option) *GameState {
	s := &GameState{}
	for _, opt := range opts {
		opt(s)
	}
	r := s.Rand()

	rows, cols := settings.BoardRows, settings.BoardCols
	s.BoardRows = rows
	s.BoardCols = cols
	s.Tiles = createTiles(rows, cols, r)
	s.Units = map[string]*Unit{}

	positions := strongholdPositions(rows, cols)
	for _, seat := range Seats {
		sh := &Unit{
			ID:       StrongholdID(seat),
			Owner:    seat,
			Kind:     KindStronghold,
			Strength: settings.StrongholdStrength,
			Pos:      positions[seat],
			Facing:   strongholdFacing(seat),
		}
		s.Units[sh.ID] = sh
	}
	for i, seat := range Seats {
		sh := s.Units[StrongholdID(seat)]
		front := Neighbor(sh.Pos, sh.Facing)
		if !InBounds(rows, cols, front) {
			continue
		}
		id := fmt.Sprintf("u%d-%d", seat, i+1)
		s.Units[id] = &Unit{ID: id, Owner: seat, Kind: KindUnit, Strength: 2, Pos: front, Facing: sh.Facing}
	}

	for _, seat := range Seats {
		deck := decks[seat]
		if deck == nil {
			deck = startingDeck[:min(settings.DeckSize, len(startingDeck))]
		}
		s.Players[seat] = PlayerState{
			Deck:    NewDeck(deck, r),
			Hand:    []CardInstance{},
			Discard: []CardInstance{},
			Orders:  []Order{},
		}
	}

	s.ActionBudgets = [2]int{settings.ActionBudgetP1, settings.ActionBudgetP2}
	s.ActivePlayer = SeatOne
	s.Phase = PhasePlanning
	s.ActionQueue = []Order{}
	s.Turn = 1
	s.NextUnitID = 3
	s.NextOrderID = 1
	s.Log = []string{"Game start."}
	s.SpawnedByOrder = map[string]string{}
	s.Settings = settings

	DrawPhase(s)
	return s
}

func StrongholdID(seat Seat) string { return fmt.Sprintf("stronghold-%d", seat) }

func strongholdFacing(seat Seat) Direction {
	if seat == SeatOne {
		return DirSouthEast
	}
	return DirNorthWest
}

func strongholdPositions(rows, cols int) [2]Hex {
	center := cols / 2
	return [2]Hex{
		{Q: center - 1, R: 0},
		{Q: center, R: rows - 1},
	}
}

// NewDeck turns a list of card ids into shuffled card instances with ids c1..cN.
func NewDeck(defIDs []CardDefID, r *rand.Rand) []CardInstance {
	cards := make([]CardInstance, len(defIDs))
	for i, id := range defIDs {
		cards[i] = CardInstance{ID: fmt.Sprintf("c%d", i+1), DefID: id}
	}
	shuffle(r, cards)
	return cards
}

// NewPlayerState builds a seat's zones from a deck list with the opening
// hand already drawn. Card ids are prefixed with the seat.
func NewPlayerState(seat Seat, defIDs []CardDefID, draw int, r *rand.Rand) PlayerState {
	deck := make([]CardInstance, len(defIDs))
	for i, id := range defIDs {
		deck[i] = CardInstance{ID: fmt.Sprintf("p%d-c%d", seat+1, i+1), DefID: id}
	}
	shuffle(r, deck)
	n := min(max(draw, 0), len(deck))
	return PlayerState{
		Deck:    append([]CardInstance{}, deck[n:]...),
		Hand:    append([]CardInstance{}, deck[:n]...),
		Discard: []CardInstance{},
		Orders:  []Order{},
	}
}

func shuffle[T any](r *rand.Rand, items []T) {
	r.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}

type weightedKind struct {
	kind   TileKind
	weight float64
}

func createTiles(rows, cols int, r *rand.Rand) []Tile {
	positions := make([]Hex, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for q := 0; q < cols; q++ {
			positions = append(positions, Hex{Q: q, R: row})
		}
	}

	order := append([]Hex{}, positions...)
	shuffle(r, order)

	assigned := make(map[Hex]TileKind, len(positions))
	for _, h := range order {
		weights := make([]weightedKind, 0, len(tileKinds))
		for _, kind := range tileKinds {
			same := countNeighborsOfKind(assigned, rows, cols, h, kind)
			if kind == TilePond && same > 0 {
				weights = append(weights, weightedKind{kind: kind})
				continue
			}
			weights = append(weights, weightedKind{kind: kind, weight: tileBaseWeight[kind] + float64(same)*sameKindBonus})
		}
		assigned[h] = pickWeightedKind(weights, r)
	}

	tiles := make([]Tile, len(positions))
	for i, h := range positions {
		tiles[i] = Tile{ID: fmt.Sprintf("%d,%d", h.Q, h.R), Q: h.Q, R: h.R, Kind: assigned[h]}
	}
	return tiles
}

func countNeighborsOfKind(assigned map[Hex]TileKind, rows, cols int, h Hex, kind TileKind) int {
	count := 0
	for d := DirEast; d <= DirSouthEast; d++ {
		n := Neighbor(h, d)
		if !InBounds(rows, cols, n) {
			continue
		}
		if k, ok := assigned[n]; ok && k == kind {
			count++
		}
	}
	return count
}

func pickWeightedKind(weights []weightedKind, r *rand.Rand) TileKind {
	total := 0.0
	for _, w := range weights {
		total += w.weight
	}
	if total <= 0 {
		fallback := make([]weightedKind, 0, len(weights))
		for _, w := range weights {
			if w.weight >= 0 && w.kind != TilePond {
				fallback = append(fallback, w)
			}
		}
		if len(fallback) == 0 {
			fallback = weights
		}
		return fallback[r.IntN(len(fallback))].kind
	}
	roll := r.Float64() * total
	for _, w := range weights {
		roll -= w.weight
		if roll <= 0 {
			return w.kind
		}
	}
	return weights[len(weights)-1].kind
}
