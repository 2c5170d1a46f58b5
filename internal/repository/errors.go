package repository

import "errors"

// ErrNoRowsUpdated is returned when a conditional update matched no row.
var ErrNoRowsUpdated = errors.New("no rows updated")
