// Package storage persists the blog post collection as a single JSON file.
//
// FileStore is the only durable-state implementation. Every save replaces
// the whole file; the write goes to a temp file in the same directory and
// is renamed into place so a crash can never leave a half-written store.
package storage

// Timestamp layouts used on stored posts. Date is the human-readable
// creation stamp; SortDateLayout carries a full time of day and exists
// only so chronological sorting has a fully ordered key.
const (
	DateLayout     = "Mon, Jan 02, 2006"
	SortDateLayout = "Mon, Jan 02, 2006 15:04:05"
)

// Post is a stored blog post. ID, Date and SortDate are assigned at
// creation time and never change afterwards. Likes is omitted from the
// JSON form while zero.
type Post struct {
	ID       int    `json:"id"`
	Date     string `json:"date"`
	Author   string `json:"author"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	SortDate string `json:"sort_date"`
	Likes    int    `json:"likes,omitempty"`
}
