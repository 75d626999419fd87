// Package http provides HTTP handlers and middleware for the course planner API.
//
// The router exposes the following endpoints:
//   - POST /login: issues a session token. Body: {"email","password"}. Response:
//     {"token","expires_at"} with the token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - POST /logout: revokes the current session token extracted from the
//     Authorization header or session cookie. Returns 204 and clears the cookie.
//   - GET/POST /campuses, GET/POST /buildings: location catalog endpoints.
//   - GET/POST /rooms, GET/PUT/DELETE /rooms/{id}: room catalog endpoints.
//     Deleting a room that still has meetings returns 409 with error code
//     ROOM_IN_USE.
//   - GET /rooms/availability?year&term&day&start_time&end_time&exclude_parent:
//     lists every room with the titles of meetings that conflict with the
//     queried weekly slot. A room with an empty meeting_titles list is free.
//   - GET /rooms/{id}/bookings?...: the same conflict question narrowed to one
//     room.
//   - GET/POST /semesters, GET/DELETE /semesters/{id}: semester management.
//   - GET/POST /courses, GET/PUT/DELETE /courses/{id}: course catalog.
//   - GET/POST /course-instances, GET/DELETE /course-instances/{id}: course
//     offerings per semester. Listing accepts ?semester_id=.
//   - GET/POST /event-parents, GET/PUT/DELETE /event-parents/{id}: titled
//     non-class groupings.
//   - GET/POST /events, GET/DELETE /events/{id}: non-class offerings per
//     semester. Listing accepts ?semester_id=.
//   - GET /meetings?parent_id=, POST /meetings, GET/PUT/DELETE /meetings/{id}:
//     weekly room slots owned by a course instance or a non-class event.
//   - GET/POST /users, GET/PUT/DELETE /users/{id}: administrator controlled
//     account management.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
