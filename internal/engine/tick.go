package engine

// AdvanceTick is the sole mutating entry point. It returns the next state and
// leaves state untouched. Orders are resolved strictly in slice order; the
// caller has already merged and charged them (see MergeOrders).
// An ended game is returned unchanged.
func (e *Engine) AdvanceTick(state *WorldState, orders []Order) *WorldState {
	if state.Phase == PhaseEnded {
		return state
	}

	next := state.Clone()
	next.Events = nil
	next.Tick++

	if next.Phase == PhaseFreeExpansion && next.Tick >= e.Tuning.FreeExpansionTicks {
		next.Phase = PhaseActive
		next.emit(Event{Kind: EventPhase, Nation: NoWinner, Other: NoWinner, Description: "free expansion is over"})
		e.Log.Info("phase changed", "tick", next.Tick, "phase", next.Phase.String())
	}

	e.develop(next)

	resolved := 0
	for _, o := range orders {
		if e.resolve(next, o) {
			resolved++
		}
	}

	ledgers := e.Survey(next.Grid, len(next.Nations))
	e.applyYield(next, ledgers)
	e.settle(next, ledgers)
	e.evaluateVictory(next)

	e.Log.Debug("tick",
		"tick", next.Tick,
		"phase", next.Phase.String(),
		"orders", len(orders),
		"resolved", resolved,
		"alive", len(next.AliveNations()),
		"events", len(next.Events),
	)
	return next
}
