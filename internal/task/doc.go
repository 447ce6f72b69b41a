// Package task holds the task record and the store that owns and persists
// the task list.
//
// The task file (tasks.json by default) is a JSON array. Each element has
// exactly four fields:
//
//	[
//	  {
//	    "title": "Pay bills",
//	    "description": "due monthly",
//	    "deadline": "2025-01-01",
//	    "timestamp": "2025-01-01T09:30:00.123456789Z"
//	  },
//	  {
//	    "title": "Clean",
//	    "description": "weekly chore",
//	    "deadline": null,
//	    "timestamp": "2025-01-01T09:31:12Z"
//	  }
//	]
//
// # Addressing
//
// Tasks have no identity beyond their position in the list. Update and
// Delete take a zero-based index; an index outside the list is ignored.
// Deleting or sorting shifts positions, so callers must re-read the list
// after every mutation instead of caching indices.
//
// # Persistence
//
// Every mutation rewrites the whole file before returning. If the write
// fails the in-memory list is restored to its previous state and the
// error is returned.
//
// Loading a missing file yields an empty list. Loading a file that is not
// valid JSON, or that does not match the task file schema, also yields an
// empty list: the problem is logged and kept in LoadErr, but Load itself
// does not fail.
//
// The built-in schema checks field types only. Deadlines are stored as
// given, so a deadline that is not a YYYY-MM-DD date survives a save and
// load and is reported by SortByDeadline instead. Unknown keys are
// ignored and dropped on the next save.
//
// # File Format
//
// When writing the task file, the package uses:
//   - 2-space indentation
//   - Trailing newline
//   - RFC 3339 timestamps in UTC with nanosecond precision
//   - null for a missing deadline
//
// When reading, timestamps without a UTC offset (such as
// "2025-01-01T09:30:00.123456") are accepted and interpreted in local
// time. A missing timestamp is set to the load time.
package task
