// Package planner builds and executes filesystem mutation plans.
//
// Every batch tool in mediakit (scaffolding, renaming, DCC project creation,
// template provisioning) first produces a Plan: an ordered list of
// operations plus any conflicts found while planning. Nothing touches disk
// until the plan is conflict-free, so a batch either starts cleanly or not
// at all. Execution stops at the first failing operation and reports how
// many operations completed, which callers record in their own ledgers.
//
// Key responsibilities:
//   - Generate Plans with ordered operations
//   - Detect conflicts (existing files, duplicate targets, type mismatches)
//   - Execute plans through fsops.FS with a per-operation observer
package planner
