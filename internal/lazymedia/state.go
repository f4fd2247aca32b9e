// Package lazymedia defers fetching gallery images and videos until they come near the
// viewport, and fetches each resource at most once.
package lazymedia

import (
	"context"

	"github.com/looplab/fsm"
)

// State is the lifecycle of one media instance.
type State string

const (
	// Idle means the element was never reported near the viewport. No resource exists yet.
	Idle State = "idle"
	// Pending means the fetch was started and the resource is loading behind the placeholder.
	Pending State = "pending"
	// Loaded means the resource signalled load completion and is visible.
	Loaded State = "loaded"
)

const (
	eventIntersect = "intersect"
	eventLoad      = "load"
)

func newMachine() *fsm.FSM {
	return fsm.NewFSM(
		string(Idle),
		fsm.Events{
			{Name: eventIntersect, Src: []string{string(Idle)}, Dst: string(Pending)},
			{Name: eventLoad, Src: []string{string(Pending)}, Dst: string(Loaded)},
		},
		fsm.Callbacks{},
	)
}

// advance fires event when the machine allows it and reports whether the state changed.
func advance(machine *fsm.FSM, event string) bool {
	if !machine.Can(event) {
		return false
	}
	return machine.Event(context.Background(), event) == nil
}
