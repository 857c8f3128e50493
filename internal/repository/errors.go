// Package repository is the raw-SQL data access layer over MySQL.
// Booking persistence implements the booking.Store interface with
// context-carried transactions; the remaining repositories are plain
// struct-per-table CRUD used directly by handlers.  Sentinel values
// below let handlers distinguish failure scenarios without string
// matching.
package repository

import "errors"

// ErrRoomNumberExists is returned when creating or renumbering a room
// would collide with an existing room_number.  Handlers translate
// this into an HTTP 409 response.
var ErrRoomNumberExists = errors.New("room number already exists")

// ErrInUse is returned when a delete cannot proceed because dependent
// records exist, such as removing a room that still has non-cancelled
// bookings.  Handlers translate this into an HTTP 409 response.
var ErrInUse = errors.New("resource has dependent records")
