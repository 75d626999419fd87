// Package testfixtures provides deterministic clocks, identifier generators,
// booking fixtures and a SQLite harness for tests across the planner.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/course-planner/internal/booking"
)

var recordCounter uint64

var referenceTime = time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// RecordOption configures a generated booking record.
type RecordOption func(*booking.Record)

// NewRecord returns a deterministic booking record with optional overrides.
// The default is a fall 2026 Tuesday 13:00-14:15 course meeting.
func NewRecord(opts ...RecordOption) booking.Record {
	idx := atomic.AddUint64(&recordCounter, 1)
	record := booking.Record{
		RoomID:   fmt.Sprintf("room-%03d", idx),
		RoomName: fmt.Sprintf("Science Center %03d", idx),
		Year:     2026,
		Term:     booking.Fall,
		Day:      booking.Tuesday,
		Interval: booking.Interval{Start: 13 * 60, End: 14*60 + 15},
		Parent:   booking.ParentRef{Kind: booking.ParentCourseInstance, ID: fmt.Sprintf("instance-%03d", idx)},
		Title:    fmt.Sprintf("SEC %03d", idx),
	}
	for _, opt := range opts {
		opt(&record)
	}
	return record
}

// WithRoom overrides the room id and display name.
func WithRoom(id, name string) RecordOption {
	return func(r *booking.Record) {
		r.RoomID = id
		r.RoomName = name
	}
}

// WithSemester overrides the year and term.
func WithSemester(year int, term booking.Term) RecordOption {
	return func(r *booking.Record) {
		r.Year = year
		r.Term = term
	}
}

// WithSlot overrides the weekday and interval.
func WithSlot(day booking.Day, start, end booking.TimeOfDay) RecordOption {
	return func(r *booking.Record) {
		r.Day = day
		r.Interval = booking.Interval{Start: start, End: end}
	}
}

// WithParent overrides the owning parent reference.
func WithParent(kind booking.ParentKind, id string) RecordOption {
	return func(r *booking.Record) {
		r.Parent = booking.ParentRef{Kind: kind, ID: id}
	}
}

// WithTitle overrides the human-readable title.
func WithTitle(title string) RecordOption {
	return func(r *booking.Record) {
		r.Title = title
	}
}
