/*
Package modeler models the software under test as a graph of state types
connected by guarded transitions.

Graphs are discovered, not declared up front: a state type lists its
transitions only when asked, and each transition names its target lazily
through a one-shot loader and identifier. How far a load cascades is chosen
with a LoadStrategy:

	None       nothing is loaded
	Lazy       the state only
	Connected  the state and its transitions, targets stay unloaded
	Eager      everything reachable

A FiniteStateMachine adds a current state and a selection pipeline
(read, prefilter, validate, select, execute) on top of the Graph.

	fsm := modeler.NewFiniteStateMachine(modeler.WithSelectionStrategy(modeler.SelectFirst))
	if _, err := fsm.UseStateType(LoggedOut, modeler.Lazy); err != nil {
		return err
	}
	next, err := fsm.MakeTransition(modeler.MetaEquals("event", "login"))
*/
package modeler
