/*
Package ladon is a model-based test automation framework.

The software under test is described as a graph of state types joined by
guarded transitions (package modeler). Test scripts run through ordered
phases (package automator); every phase runs in a sandbox, so a failing or
panicking phase is folded into the run's result instead of crashing it. A
result carries a status (SUCCESS, FAILURE or ERROR, only ever escalating), a
leveled message log, named timings and a data log.

# Concept

A script is a phase plan plus one handler per phase. Scripts built on
automator.ModelAutomation first build a model, verify it is a finite state
machine, and then drive the machine transition by transition, asserting on
the states they reach. Loading is lazy where it can be: a state's
transitions, and a transition's target, are only loaded when a load strategy
or a step of the machine asks for them.

# Usage

	package main

	import (
		"context"
		"fmt"

		"github.com/aretw0/ladon"
		"github.com/aretw0/ladon/pkg/automator"
	)

	func main() {
		script := &automator.Steps{Funcs: map[string]automator.PhaseFunc{
			automator.PhaseExecute: func(ctx context.Context, a *automator.Automation) error {
				_, err := a.Assert("one is one", func() any { return 1 == 1 })
				return err
			},
		}}
		res, err := ladon.RunScript(context.Background(), script, nil)
		if err != nil {
			panic(err)
		}
		fmt.Println(res.Status())
	}

Registered scripts are run by name through package runner, which persists
each result in a ports.ResultStore (memory, file or Redis) and can run whole
batches from a YAML manifest. The ladon command wraps all of this in a CLI.
*/
package ladon
