// Package level holds the parsed description of a dungeon: rooms, their
// walls and doors, and the markers (lights, monsters, items) placed in them.
// It also answers adjacency questions, assigns floor levels and validates the
// description before any geometry is generated.
package level
