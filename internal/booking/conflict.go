package booking

import "sort"

// ParentKind discriminates the owner of a meeting.
type ParentKind string

const (
	// ParentCourseInstance marks a meeting owned by a scheduled course offering.
	ParentCourseInstance ParentKind = "course_instance"
	// ParentNonClassEvent marks a meeting owned by a non-class event.
	ParentNonClassEvent ParentKind = "non_class_event"
)

// ParentRef is the tagged "exactly one of" reference from a meeting to its
// owning course instance or non-class event.
type ParentRef struct {
	Kind ParentKind
	ID   string
}

// Record is one row of the booking index: a meeting projected together with
// its room display name, semester, and a human-readable title. Records are
// derived fresh from meeting data on every query and never cached.
type Record struct {
	RoomID   string
	RoomName string
	Year     int
	Term     Term
	Day      Day
	Interval Interval
	Parent   ParentRef
	Title    string
}

// Query describes one availability question against the booking index.
// RoomID narrows the search to a single room when non-empty. ExcludeParentID
// drops bookings owned by that parent, letting a meeting being edited ignore
// its own prior slot.
type Query struct {
	RoomID          string
	Year            int
	Term            Term
	Day             Day
	Interval        Interval
	ExcludeParentID string
}

// Matches reports whether the record conflicts with the queried slot.
func (q Query) Matches(r Record) bool {
	if q.RoomID != "" && r.RoomID != q.RoomID {
		return false
	}
	if r.Year != q.Year || r.Term != q.Term || r.Day != q.Day {
		return false
	}
	if q.ExcludeParentID != "" && r.Parent.ID == q.ExcludeParentID {
		return false
	}
	return r.Interval.Overlaps(q.Interval)
}

// RoomConflicts aggregates the conflicting meeting titles for one room.
// Titles preserve duplicates and follow the input record order.
type RoomConflicts struct {
	RoomID string
	Titles []string
}

// Conflicts filters the booking index with the query and groups the matching
// titles by room, one entry per room sorted by room id. Rooms without
// conflicts do not appear; an empty result means every queried room is free.
func Conflicts(records []Record, q Query) []RoomConflicts {
	grouped := make(map[string][]string)
	order := make([]string, 0)

	for _, record := range records {
		if !q.Matches(record) {
			continue
		}
		if _, seen := grouped[record.RoomID]; !seen {
			order = append(order, record.RoomID)
		}
		grouped[record.RoomID] = append(grouped[record.RoomID], record.Title)
	}

	if len(order) == 0 {
		return nil
	}

	sort.Strings(order)
	conflicts := make([]RoomConflicts, 0, len(order))
	for _, roomID := range order {
		conflicts = append(conflicts, RoomConflicts{RoomID: roomID, Titles: grouped[roomID]})
	}
	return conflicts
}

// TitlesByRoom returns the conflicting titles keyed by room id, for callers
// joining conflicts onto a full room catalog.
func TitlesByRoom(records []Record, q Query) map[string][]string {
	grouped := make(map[string][]string)
	for _, record := range records {
		if !q.Matches(record) {
			continue
		}
		grouped[record.RoomID] = append(grouped[record.RoomID], record.Title)
	}
	return grouped
}
