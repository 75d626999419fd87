package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/course-planner/internal/booking"
	"github.com/example/course-planner/internal/persistence"
)

// MeetingRepository implements persistence.MeetingRepository using SQLite.
type MeetingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewMeetingRepository creates a new SQLite meeting repository.
func NewMeetingRepository(pool *ConnectionPool) *MeetingRepository {
	return &MeetingRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

func parentColumns(meeting persistence.Meeting) (sql.NullString, sql.NullString) {
	var instanceID, eventID sql.NullString
	if meeting.CourseInstanceID != nil {
		instanceID = sql.NullString{String: *meeting.CourseInstanceID, Valid: true}
	}
	if meeting.NonClassEventID != nil {
		eventID = sql.NullString{String: *meeting.NonClassEventID, Valid: true}
	}
	return instanceID, eventID
}

// CreateMeeting inserts a new meeting. The schema enforces that exactly one
// parent column is set and that the start time precedes the end time.
func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	if meeting.ID == "" || meeting.RoomID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	meeting.CreatedAt = now
	meeting.UpdatedAt = now

	instanceID, eventID := parentColumns(meeting)

	_, err := r.helper.Exec(ctx,
		`INSERT INTO meetings (id, room_id, day, start_time, end_time, course_instance_id, non_class_event_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meeting.ID, meeting.RoomID, string(meeting.Day),
		meeting.Start.String(), meeting.End.String(),
		instanceID, eventID,
		formatTime(meeting.CreatedAt), formatTime(meeting.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateMeeting updates an existing meeting.
func (r *MeetingRepository) UpdateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	if meeting.ID == "" || meeting.RoomID == "" {
		return persistence.ErrConstraintViolation
	}

	meeting.UpdatedAt = time.Now().UTC()

	instanceID, eventID := parentColumns(meeting)

	result, err := r.helper.Exec(ctx,
		`UPDATE meetings SET room_id = ?, day = ?, start_time = ?, end_time = ?,
		 course_instance_id = ?, non_class_event_id = ?, updated_at = ? WHERE id = ?`,
		meeting.RoomID, string(meeting.Day),
		meeting.Start.String(), meeting.End.String(),
		instanceID, eventID,
		formatTime(meeting.UpdatedAt), meeting.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetMeeting retrieves a meeting by ID.
func (r *MeetingRepository) GetMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	if id == "" {
		return persistence.Meeting{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx,
		`SELECT id, room_id, day, start_time, end_time, course_instance_id, non_class_event_id, created_at, updated_at
		 FROM meetings WHERE id = ?`, id)

	meeting, err := scanMeetingRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Meeting{}, persistence.ErrNotFound
		}
		return persistence.Meeting{}, r.mapper.MapError(err)
	}
	return meeting, nil
}

func scanMeetingRow(scan func(dest ...any) error) (persistence.Meeting, error) {
	var meeting persistence.Meeting
	var day, start, end string
	var instanceID, eventID sql.NullString
	var createdAt, updatedAt string

	err := scan(&meeting.ID, &meeting.RoomID, &day, &start, &end,
		&instanceID, &eventID, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Meeting{}, err
	}

	if meeting.Day, err = booking.ParseDay(day); err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to parse day: %w", err)
	}
	if meeting.Start, err = booking.ParseTimeOfDay(start); err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if meeting.End, err = booking.ParseTimeOfDay(end); err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if instanceID.Valid {
		meeting.CourseInstanceID = &instanceID.String
	}
	if eventID.Valid {
		meeting.NonClassEventID = &eventID.String
	}
	if meeting.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.Meeting{}, err
	}
	if meeting.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Meeting{}, err
	}
	return meeting, nil
}

// ListMeetingsForParent returns the meetings owned by a course instance or a
// non-class event, ordered by day then start time.
func (r *MeetingRepository) ListMeetingsForParent(ctx context.Context, parentID string) ([]persistence.Meeting, error) {
	if parentID == "" {
		return nil, persistence.ErrNotFound
	}

	rows, err := r.helper.Query(ctx,
		`SELECT id, room_id, day, start_time, end_time, course_instance_id, non_class_event_id, created_at, updated_at
		 FROM meetings
		 WHERE course_instance_id = ? OR non_class_event_id = ?
		 ORDER BY day ASC, start_time ASC, id ASC`,
		parentID, parentID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var meetings []persistence.Meeting
	for rows.Next() {
		meeting, err := scanMeetingRow(rows.Scan)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		meetings = append(meetings, meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return meetings, nil
}

// DeleteMeeting removes a meeting by ID.
func (r *MeetingRepository) DeleteMeeting(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM meetings WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListBookings projects every meeting of the given semester into a booking
// record. Course meetings are titled "<prefix> <number>"; non-class meetings
// carry their parent's title. The projection is recomputed on every call.
func (r *MeetingRepository) ListBookings(ctx context.Context, year int, term booking.Term) ([]booking.Record, error) {
	query := `
		SELECT
			m.room_id,
			b.name || ' ' || r.name,
			s.year,
			s.term,
			m.day,
			m.start_time,
			m.end_time,
			COALESCE(m.course_instance_id, m.non_class_event_id),
			CASE WHEN m.course_instance_id IS NOT NULL THEN 1 ELSE 0 END,
			CASE WHEN m.course_instance_id IS NOT NULL
				THEN c.prefix || ' ' || c.number
				ELSE p.title
			END
		FROM meetings m
		JOIN rooms r ON r.id = m.room_id
		JOIN buildings b ON b.id = r.building_id
		LEFT JOIN course_instances ci ON ci.id = m.course_instance_id
		LEFT JOIN courses c ON c.id = ci.course_id
		LEFT JOIN non_class_events e ON e.id = m.non_class_event_id
		LEFT JOIN non_class_parents p ON p.id = e.parent_id
		JOIN semesters s ON s.id = COALESCE(ci.semester_id, e.semester_id)
		WHERE s.year = ? AND s.term = ?
		ORDER BY m.room_id ASC, m.day ASC, m.start_time ASC, m.id ASC
	`

	rows, err := r.helper.Query(ctx, query, year, string(term))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var records []booking.Record
	for rows.Next() {
		var record booking.Record
		var termText, day string
		var start, end string
		var isCourse int
		if err := rows.Scan(&record.RoomID, &record.RoomName, &record.Year, &termText,
			&day, &start, &end, &record.Parent.ID, &isCourse, &record.Title); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if record.Term, err = booking.ParseTerm(termText); err != nil {
			return nil, fmt.Errorf("failed to parse term: %w", err)
		}
		if record.Day, err = booking.ParseDay(day); err != nil {
			return nil, fmt.Errorf("failed to parse day: %w", err)
		}
		var interval booking.Interval
		if interval.Start, err = booking.ParseTimeOfDay(start); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if interval.End, err = booking.ParseTimeOfDay(end); err != nil {
			return nil, fmt.Errorf("failed to parse end_time: %w", err)
		}
		record.Interval = interval
		if isCourse == 1 {
			record.Parent.Kind = booking.ParentCourseInstance
		} else {
			record.Parent.Kind = booking.ParentNonClassEvent
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return records, nil
}

// RoomHasMeetings reports whether any meeting references the room.
func (r *MeetingRepository) RoomHasMeetings(ctx context.Context, roomID string) (bool, error) {
	if roomID == "" {
		return false, nil
	}

	var exists int
	err := r.helper.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM meetings WHERE room_id = ?)", roomID,
	).Scan(&exists)
	if err != nil {
		return false, r.mapper.MapError(err)
	}
	return exists == 1, nil
}
