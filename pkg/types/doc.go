// Package types defines the field schema entities of a grid, the per-type
// configuration variants, the collaborator interfaces the schema engine
// consumes (FieldStore, Notifier, IDGenerator), and the standard error values.
//
// Field order within a grid is the order of the slice the engine holds.
// Stores persist it but never decide it.
package types
