package blog

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/masterblog/masterblog/internal/storage"
)

// The query functions in this file are pure: they operate on a snapshot
// handed to them by the engine and never touch storage or engine state.
// SortPosts returns a fresh slice so the snapshot itself is never
// reordered under concurrent readers.

// searchField returns the value of the named field on p. Unknown names
// fall back to the title, matching the store's historical behavior.
func searchField(p storage.Post, field string) string {
	switch field {
	case "author":
		return p.Author
	case "content":
		return p.Content
	case "date":
		return p.Date
	default:
		return p.Title
	}
}

// FilterPosts keeps the posts whose searchBy field contains term,
// case-insensitively. An empty term matches every post.
func FilterPosts(posts []storage.Post, searchBy, term string) []storage.Post {
	term = strings.ToLower(term)
	matched := make([]storage.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(searchField(p, searchBy)), term) {
			matched = append(matched, p)
		}
	}
	return matched
}

// bucketLess orders two field values by the case-folded first character,
// then by the full value with normal case-sensitive comparison. The
// two-level key means "apple" and "Apricot" land in the same 'a' bucket
// but keep case-sensitive order within it.
func bucketLess(a, b string) bool {
	ra, _ := utf8.DecodeRuneInString(a)
	rb, _ := utf8.DecodeRuneInString(b)
	ra, rb = unicode.ToLower(ra), unicode.ToLower(rb)
	if ra != rb {
		return ra < rb
	}
	return a < b
}

func sortTime(p storage.Post) time.Time {
	// SortDate is stamped by the engine and always parseable.
	t, _ := time.Parse(storage.SortDateLayout, p.SortDate)
	return t
}

// SortPosts returns posts ordered by sortBy. Title, author and content
// use the bucket-then-lexical key; date sorts chronologically on the
// parsed sort_date stamp. An empty or unrecognized sortBy preserves
// insertion order and ignores direction. direction "desc" reverses the
// chosen ordering.
func SortPosts(posts []storage.Post, sortBy, direction string) []storage.Post {
	var less func(a, b storage.Post) bool
	switch sortBy {
	case "title":
		less = func(a, b storage.Post) bool { return bucketLess(a.Title, b.Title) }
	case "author":
		less = func(a, b storage.Post) bool { return bucketLess(a.Author, b.Author) }
	case "content":
		less = func(a, b storage.Post) bool { return bucketLess(a.Content, b.Content) }
	case "date":
		less = func(a, b storage.Post) bool { return sortTime(a).Before(sortTime(b)) }
	default:
		return posts
	}

	sorted := make([]storage.Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	if direction == "desc" {
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
	}
	return sorted
}

// Paginate returns the 1-indexed page of the given size, clipped to the
// available range. Out-of-range pages yield an empty slice.
func Paginate(posts []storage.Post, page, pageSize int) []storage.Post {
	start := (page - 1) * pageSize
	if start < 0 || start >= len(posts) {
		return []storage.Post{}
	}
	end := start + pageSize
	if end > len(posts) {
		end = len(posts)
	}
	return posts[start:end]
}
