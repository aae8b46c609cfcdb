// Package catalog parses the tab-separated archive catalog and groups its rows
// into recordings and sessions.
//
// A catalog row points into one source recording (Folder + filename) with a
// start, end, and duration timecode, plus the session numbering columns that
// say which teaching session the fragment belongs to. Parse reads the file,
// normalizes timecodes to milliseconds, and builds two views:
//
//   - every recording with its rows in catalog order
//   - the processed recordings, whose rows are grouped into main sessions,
//     "_trans" translation sessions, and (in renamed-export mode) a synthetic
//     session "1" for rows that only carry an export filename
//
// Parts inside a session always keep catalog row order; part labels are
// free-form strings and are never sorted.
package catalog
