package sqlite

import "github.com/example/course-planner/internal/persistence/sqlite/migration"

// Migrations defines the course-planning schema. Meetings carry the
// exactly-one-parent CHECK and the start-before-end CHECK; meeting times are
// stored as zero-padded "HH:MM:SS" text so that CHECK and the start_time
// ordering compare chronologically. Room references
// are RESTRICT so rooms with bookings cannot be deleted, while parent
// references CASCADE so deleting a course instance or non-class event
// removes its meetings.
var Migrations = []migration.Migration{
	{
		Version: 1,
		Name:    "locations_and_rooms",
		Statements: []string{
			`CREATE TABLE campuses (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE buildings (
				id TEXT PRIMARY KEY,
				campus_id TEXT NOT NULL REFERENCES campuses(id) ON DELETE CASCADE,
				name TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				UNIQUE (campus_id, name)
			)`,
			`CREATE TABLE rooms (
				id TEXT PRIMARY KEY,
				building_id TEXT NOT NULL REFERENCES buildings(id) ON DELETE CASCADE,
				name TEXT NOT NULL,
				capacity INTEGER NOT NULL CHECK (capacity > 0),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				UNIQUE (building_id, name)
			)`,
		},
	},
	{
		Version: 2,
		Name:    "catalog",
		Statements: []string{
			`CREATE TABLE semesters (
				id TEXT PRIMARY KEY,
				year INTEGER NOT NULL,
				term TEXT NOT NULL CHECK (term IN ('FALL', 'SPRING')),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				UNIQUE (year, term)
			)`,
			`CREATE TABLE courses (
				id TEXT PRIMARY KEY,
				prefix TEXT NOT NULL,
				number TEXT NOT NULL,
				title TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				UNIQUE (prefix, number)
			)`,
			`CREATE TABLE course_instances (
				id TEXT PRIMARY KEY,
				course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
				semester_id TEXT NOT NULL REFERENCES semesters(id) ON DELETE CASCADE,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE non_class_parents (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE non_class_events (
				id TEXT PRIMARY KEY,
				parent_id TEXT NOT NULL REFERENCES non_class_parents(id) ON DELETE CASCADE,
				semester_id TEXT NOT NULL REFERENCES semesters(id) ON DELETE CASCADE,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
	},
	{
		Version: 3,
		Name:    "meetings",
		Statements: []string{
			`CREATE TABLE meetings (
				id TEXT PRIMARY KEY,
				room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE RESTRICT,
				day TEXT NOT NULL CHECK (day IN ('MON', 'TUE', 'WED', 'THU', 'FRI')),
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				course_instance_id TEXT REFERENCES course_instances(id) ON DELETE CASCADE,
				non_class_event_id TEXT REFERENCES non_class_events(id) ON DELETE CASCADE,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				CHECK (start_time < end_time),
				CHECK ((course_instance_id IS NULL) <> (non_class_event_id IS NULL))
			)`,
			`CREATE INDEX idx_meetings_room ON meetings(room_id)`,
			`CREATE INDEX idx_meetings_course_instance ON meetings(course_instance_id)`,
			`CREATE INDEX idx_meetings_non_class_event ON meetings(non_class_event_id)`,
		},
	},
	{
		Version: 4,
		Name:    "users_and_sessions",
		Statements: []string{
			`CREATE TABLE users (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				display_name TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				is_admin INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE sessions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				token TEXT NOT NULL UNIQUE,
				expires_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				revoked_at TEXT
			)`,
		},
	},
}
