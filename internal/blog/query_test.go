package blog

import (
	"testing"

	"github.com/masterblog/masterblog/internal/storage"
)

func post(id int, title, author, content string) storage.Post {
	return storage.Post{
		ID:       id,
		Date:     "Wed, Dec 13, 2023",
		Author:   author,
		Title:    title,
		Content:  content,
		SortDate: "Wed, Dec 13, 2023 12:00:00",
	}
}

func titles(posts []storage.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func equalTitles(got []storage.Post, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i, p := range got {
		if p.Title != want[i] {
			return false
		}
	}
	return true
}

func TestFilterPosts_CaseInsensitive(t *testing.T) {
	posts := []storage.Post{
		post(1, "Hello", "Ann", "World"),
		post(2, "Post2", "Bo", "Body2"),
	}

	upper := FilterPosts(posts, "author", "AN")
	lower := FilterPosts(posts, "author", "an")

	if len(upper) != 1 || len(lower) != 1 {
		t.Fatalf("len(upper) = %d, len(lower) = %d, want 1 and 1", len(upper), len(lower))
	}
	if upper[0].ID != lower[0].ID {
		t.Error("case variants returned different result sets")
	}
}

func TestFilterPosts_EmptyTermMatchesAll(t *testing.T) {
	posts := []storage.Post{post(1, "a", "b", "c"), post(2, "d", "e", "f")}
	if got := FilterPosts(posts, "title", ""); len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestFilterPosts_UnknownFieldFallsBackToTitle(t *testing.T) {
	posts := []storage.Post{post(1, "needle", "x", "y")}
	if got := FilterPosts(posts, "bogus", "need"); len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestFilterPosts_NoMatches(t *testing.T) {
	posts := []storage.Post{post(1, "Hello", "Ann", "World")}
	got := FilterPosts(posts, "title", "zzz")
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestSortPosts_BucketThenLexical(t *testing.T) {
	// Plain lexical order would put "Zebra" first ('Z' < 'a'); the
	// bucket key case-folds the first character, so "apple" wins.
	posts := []storage.Post{
		post(1, "Zebra", "", ""),
		post(2, "apple", "", ""),
	}

	got := SortPosts(posts, "title", "asc")
	if !equalTitles(got, "apple", "Zebra") {
		t.Errorf("order = %v, want [apple Zebra]", titles(got))
	}
}

func TestSortPosts_SecondaryKeyIsCaseSensitive(t *testing.T) {
	// Same 'a' bucket; within it the full value compares
	// case-sensitively, so "Apricot" sorts before "apple".
	posts := []storage.Post{
		post(1, "apple", "", ""),
		post(2, "Apricot", "", ""),
	}

	got := SortPosts(posts, "title", "asc")
	if !equalTitles(got, "Apricot", "apple") {
		t.Errorf("order = %v, want [Apricot apple]", titles(got))
	}
}

func TestSortPosts_Desc(t *testing.T) {
	posts := []storage.Post{
		post(1, "Hello", "", ""),
		post(2, "Post2", "", ""),
	}

	got := SortPosts(posts, "title", "desc")
	if !equalTitles(got, "Post2", "Hello") {
		t.Errorf("order = %v, want [Post2 Hello]", titles(got))
	}
}

func TestSortPosts_DateIsChronologicalNotLexical(t *testing.T) {
	older := post(1, "older", "", "")
	older.SortDate = "Wed, Dec 13, 2023 12:00:00"
	newer := post(2, "newer", "", "")
	newer.SortDate = "Fri, Jan 05, 2024 09:00:00"

	// Lexically "Fri..." < "Wed...", so a string sort would invert this.
	got := SortPosts([]storage.Post{newer, older}, "date", "asc")
	if !equalTitles(got, "older", "newer") {
		t.Errorf("order = %v, want [older newer]", titles(got))
	}
}

func TestSortPosts_UnknownKeyPreservesInsertionOrder(t *testing.T) {
	posts := []storage.Post{
		post(1, "b", "", ""),
		post(2, "a", "", ""),
	}

	got := SortPosts(posts, "", "desc")
	if !equalTitles(got, "b", "a") {
		t.Errorf("order = %v, want insertion order [b a]", titles(got))
	}
}

func TestSortPosts_DoesNotMutateInput(t *testing.T) {
	posts := []storage.Post{
		post(1, "b", "", ""),
		post(2, "a", "", ""),
	}

	SortPosts(posts, "title", "asc")
	if posts[0].Title != "b" {
		t.Error("SortPosts reordered the snapshot in place")
	}
}

func TestSortPosts_ByAuthorAndContent(t *testing.T) {
	posts := []storage.Post{
		post(1, "t1", "cara", "m"),
		post(2, "t2", "Bo", "z"),
	}

	byAuthor := SortPosts(posts, "author", "asc")
	if !equalTitles(byAuthor, "t2", "t1") {
		t.Errorf("author order = %v, want [t2 t1]", titles(byAuthor))
	}

	byContent := SortPosts(posts, "content", "asc")
	if !equalTitles(byContent, "t1", "t2") {
		t.Errorf("content order = %v, want [t1 t2]", titles(byContent))
	}
}

func TestPaginate(t *testing.T) {
	var posts []storage.Post
	for i := 1; i <= 25; i++ {
		posts = append(posts, post(i, "t", "a", "c"))
	}

	tests := []struct {
		name     string
		page     int
		pageSize int
		wantLen  int
		firstID  int
	}{
		{"first page", 1, 10, 10, 1},
		{"middle page", 2, 10, 10, 11},
		{"partial last page", 3, 10, 5, 21},
		{"out of range", 4, 10, 0, 0},
		{"whole collection", 1, 50, 25, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(posts, tt.page, tt.pageSize)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if tt.wantLen > 0 && got[0].ID != tt.firstID {
				t.Errorf("first id = %d, want %d", got[0].ID, tt.firstID)
			}
		})
	}
}

func TestPaginate_PagesCoverAllPostsOnce(t *testing.T) {
	var posts []storage.Post
	for i := 1; i <= 23; i++ {
		posts = append(posts, post(i, "t", "a", "c"))
	}

	seen := make(map[int]int)
	total := 0
	for page := 1; ; page++ {
		chunk := Paginate(posts, page, 10)
		if len(chunk) == 0 {
			break
		}
		total += len(chunk)
		for _, p := range chunk {
			seen[p.ID]++
		}
	}

	if total != len(posts) {
		t.Errorf("pages sum to %d posts, want %d", total, len(posts))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("post %d appeared on %d pages", id, n)
		}
	}
}
