/*
Package domain contains the value types shared by the modeling engine and the
automation engine of Ladon.

Nothing here performs I/O. The package describes what a run produces and how it
is configured, leaving execution to pkg/automator and presentation to pkg/render.

# Key Entities

  - Level: the ordered severity scale used to filter the message log.
  - Recorder: the per-run message log. It is an slog.Handler, so scripts log
    through a regular *slog.Logger.
  - Timer: named, ordered time entries (one per phase, plus anything a script times).
  - Flags and Config: the frozen, string-keyed configuration of a run.
  - Result: the accumulated outcome of a run. Status only ever escalates
    SUCCESS -> FAILURE -> ERROR.
*/
package domain
