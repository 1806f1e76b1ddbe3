package room

import (
	"slices"
	"time"

	"github.com/DoyleJ11/hex-tactics-backend/internal/engine"
)

type bounds struct{ lo, hi int }

var (
	boardBounds      = bounds{4, 14}
	strongholdBounds = bounds{1, 20}
	deckBounds       = bounds{5, 40}
	drawBounds       = bounds{1, 10}
	copiesBounds     = bounds{1, 10}
	budgetBounds     = bounds{1, 10}
)

func (b bounds) clamp(v int) int { return min(max(v, b.lo), b.hi) }

// NormalizeSettings clamps every setting into its allowed range. Out of
// range values are never rejected.
func NormalizeSettings(in engine.Settings) engine.Settings {
	return engine.Settings{
		BoardRows:          boardBounds.clamp(in.BoardRows),
		BoardCols:          boardBounds.clamp(in.BoardCols),
		StrongholdStrength: strongholdBounds.clamp(in.StrongholdStrength),
		DeckSize:           deckBounds.clamp(in.DeckSize),
		DrawPerTurn:        drawBounds.clamp(in.DrawPerTurn),
		MaxCopies:          copiesBounds.clamp(in.MaxCopies),
		ActionBudgetP1:     budgetBounds.clamp(in.ActionBudgetP1),
		ActionBudgetP2:     budgetBounds.clamp(in.ActionBudgetP2),
	}
}

// SanitizeDeck drops unknown cards and copies over the limit, truncates to
// the deck size, then pads from the starting deck until the size is reached
// or no card has copies left.
func SanitizeDeck(deck []engine.CardDefID, settings engine.Settings) []engine.CardDefID {
	counts := map[engine.CardDefID]int{}
	out := make([]engine.CardDefID, 0, settings.DeckSize)
	for _, id := range deck {
		if len(out) >= settings.DeckSize {
			break
		}
		if _, ok := engine.LookupCard(id); !ok || counts[id] >= settings.MaxCopies {
			continue
		}
		out = append(out, id)
		counts[id]++
	}

	starting := engine.StartingDeck()
	for len(out) < settings.DeckSize {
		padded := false
		for _, id := range starting {
			if len(out) >= settings.DeckSize {
				break
			}
			if counts[id] >= settings.MaxCopies {
				continue
			}
			out = append(out, id)
			counts[id]++
			padded = true
		}
		if !padded {
			break
		}
	}
	return out
}

// CanUpdateLoadout reports whether decks may change: after the match ended,
// or before anyone acted on turn 1.
func (r *Room) CanUpdateLoadout() bool {
	s := r.State
	if r.Ended || s.HasWinner() {
		return true
	}
	if s.Turn != 1 || s.Phase != engine.PhasePlanning {
		return false
	}
	if s.Ready[engine.SeatOne] || s.Ready[engine.SeatTwo] {
		return false
	}
	return len(s.Players[engine.SeatOne].Orders) == 0 && len(s.Players[engine.SeatTwo].Orders) == 0
}

// UpdateLoadout stores the seat's sanitized deck and rebuilds its zones
// from it. A nil deck means the starting deck.
func (r *Room) UpdateLoadout(seat engine.Seat, deck []engine.CardDefID) {
	settings := r.State.Settings
	normalized := SanitizeDeck(orStartingDeck(deck), settings)
	r.SeatLoadouts[seat] = slices.Clone(normalized)
	r.State.Players[seat] = engine.NewPlayerState(seat, normalized, settings.DrawPerTurn, r.State.Rand())
	r.State.Ready[seat] = false
	if r.Ended || r.State.HasWinner() {
		r.RematchReady[seat] = false
	} else {
		r.RematchReady = [2]bool{}
	}
}

// ApplyLoadoutOnFirstJoin lets an unlocked seat submit its deck once. The
// seat is locked afterwards whether or not a deck was sent.
func (r *Room) ApplyLoadoutOnFirstJoin(seat engine.Seat, deck []engine.CardDefID) {
	st := &r.Seats[seat]
	if st.LoadoutLocked {
		return
	}
	st.LoadoutLocked = true
	if deck == nil || !r.CanUpdateLoadout() {
		return
	}
	r.UpdateLoadout(seat, deck)
}

// RequestRematch marks the seat as wanting a rematch and reports whether
// that started one. A rematch replaces the game wholesale using the stored
// loadouts and the current settings.
func (r *Room) RequestRematch(seat engine.Seat) bool {
	r.RematchReady[seat] = true
	if !r.RematchReady[engine.SeatOne] || !r.RematchReady[engine.SeatTwo] {
		return false
	}
	decks := [2][]engine.CardDefID{slices.Clone(r.SeatLoadouts[0]), slices.Clone(r.SeatLoadouts[1])}
	opts := append(slices.Clone(r.engineOpts), engine.WithRand(r.State.Rand()))
	r.State = engine.NewGameState(r.State.Settings, decks, opts...)
	r.Ended = false
	r.EndReason = ""
	r.RematchReady = [2]bool{}
	r.Paused = false
	r.ReconnectDeadline = time.Time{}
	return true
}
