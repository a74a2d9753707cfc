package handler

import (
	"context"
	"errors"
	"fmt"

	"renthunt/internal/domain"

	"github.com/looplab/fsm"
)

// Dialog events
const (
	evStart        = "start"
	evGrant        = "grant"
	evDeny         = "deny"
	evAreasDone    = "areas-done"
	evBedsDone     = "beds-done"
	evMinPriceDone = "min-price-done"
	evPriceDone    = "price-done"
	evSearch       = "search"
	evEditAreas    = "edit-areas"
	evEditBeds     = "edit-beds"
	evEditMinPrice = "edit-min-price"
	evEditPrice    = "edit-price"
)

func states(list ...domain.DialogState) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, string(s))
	}
	return out
}

var anyState = states(domain.AllStates...)

var dialogEvents = fsm.Events{
	{Name: evStart, Src: anyState, Dst: string(domain.StateReadEmail)},
	{Name: evDeny, Src: anyState, Dst: string(domain.StateIdle)},
	{Name: evGrant, Src: states(domain.StateReadEmail), Dst: string(domain.StateReadAreas)},

	{Name: evAreasDone, Src: states(domain.StateReadAreas), Dst: string(domain.StateReadBeds)},
	{Name: evBedsDone, Src: states(domain.StateReadBeds), Dst: string(domain.StateReadMinPrice)},
	{Name: evMinPriceDone, Src: states(domain.StateReadMinPrice), Dst: string(domain.StateReadPrice)},
	{Name: evPriceDone, Src: states(domain.StateReadPrice), Dst: string(domain.StateConfirm)},

	{Name: evAreasDone, Src: states(domain.StateReadEditAreas), Dst: string(domain.StateConfirm)},
	{Name: evBedsDone, Src: states(domain.StateReadEditBeds), Dst: string(domain.StateConfirm)},
	{Name: evMinPriceDone, Src: states(domain.StateReadEditMinPrice), Dst: string(domain.StateConfirm)},
	{Name: evPriceDone, Src: states(domain.StateReadEditPrice), Dst: string(domain.StateConfirm)},

	{Name: evSearch, Src: states(domain.StateConfirm), Dst: string(domain.StateConfirm)},

	{Name: evEditAreas, Src: anyState, Dst: string(domain.StateReadEditAreas)},
	{Name: evEditBeds, Src: anyState, Dst: string(domain.StateReadEditBeds)},
	{Name: evEditMinPrice, Src: anyState, Dst: string(domain.StateReadEditMinPrice)},
	{Name: evEditPrice, Src: anyState, Dst: string(domain.StateReadEditPrice)},
}

// advance fires a dialog event and applies the resulting step to the user.
// Events that are not allowed from the current state are rejected.
func advance(ctx context.Context, user *domain.User, event string) error {
	current := user.NextAction
	if current == "" {
		current = domain.StateIdle
	}

	machine := fsm.NewFSM(string(current), dialogEvents, nil)
	if err := machine.Event(ctx, event); err != nil {
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			return fmt.Errorf("dialog event %s from %s: %w", event, current, err)
		}
	}

	user.Apply(domain.StepFor(domain.DialogState(machine.Current())))
	return nil
}
