/*
Package ports defines the driven ports (interfaces) of ladon.

These interfaces decouple automations and the batch runner from concrete
storage and coordination backends.

# Key Interfaces

  - ResultStore: persists result snapshots by run ID (memory, file and Redis adapters).
  - Locker: distributed mutual exclusion for batch runs.

RunResultStoreContract is a shared test suite every ResultStore adapter runs.
*/
package ports
