package database

import "errors"

var (
	// ErrNotFound covers both "row absent" and "row not owned by the caller";
	// the two are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrSlotTaken signals an overlapping active reservation on the same
	// location and date.
	ErrSlotTaken = errors.New("slot already reserved")
)
