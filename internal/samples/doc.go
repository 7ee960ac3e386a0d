// Package samples holds the example scripts shipped with the ladon CLI.
// Importing it registers them with runner.Default.
package samples

import "github.com/aretw0/ladon/pkg/runner"

func init() {
	runner.Register("hello", NewHello)
	runner.Register("turnstile", NewTurnstile)
	runner.Register("logins", NewLogins)
}
