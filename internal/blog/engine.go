// Package blog owns the authoritative post collection. Engine serializes
// every mutation behind a single write lock and keeps the cached
// collection in lockstep with the persisted file: a mutation is visible
// to readers only after it has been durably saved.
package blog

import (
	"sync"
	"time"

	"github.com/masterblog/masterblog/internal/observability"
	"github.com/masterblog/masterblog/internal/storage"
)

// Store is the durable home of the post collection. Save always receives
// the complete collection, never a delta.
type Store interface {
	Load() ([]storage.Post, error)
	Save([]storage.Post) error
}

// PostUpdate carries the mutable fields of an update request. Empty
// fields are left untouched on the stored post.
type PostUpdate struct {
	Title   string
	Author  string
	Content string
}

func (u PostUpdate) empty() bool {
	return u.Title == "" && u.Author == "" && u.Content == ""
}

// Engine mediates all access to the post collection. Mutations are
// copy-on-write: each one builds a replacement slice, persists it, and
// swaps it in only on success, so readers always hold an immutable
// snapshot and a failed save never leaves served state ahead of disk.
type Engine struct {
	mu    sync.RWMutex
	store Store
	posts []storage.Post
	log   *observability.Logger
	now   func() time.Time
}

// NewEngine loads the collection from store and returns an engine over
// it. A corrupt store file surfaces here, before any traffic is served.
func NewEngine(store Store, log *observability.Logger) (*Engine, error) {
	posts, err := store.Load()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = observability.NewLogger("blog", nil)
	}
	log.Info("post collection loaded", "posts", len(posts))
	return &Engine{
		store: store,
		posts: posts,
		log:   log,
		now:   time.Now,
	}, nil
}

// nextID returns the identifier for the next post: one past the id of
// the most recently appended post, or 1 for an empty collection. Ids are
// assigned in increasing order and deletions never renumber, so the last
// post always carries the highest id. Must be called with the write lock
// held.
func nextID(posts []storage.Post) int {
	if len(posts) == 0 {
		return 1
	}
	return posts[len(posts)-1].ID + 1
}

// snapshot returns the current immutable collection view.
func (e *Engine) snapshot() []storage.Post {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.posts
}

// Count returns the total number of posts.
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.posts)
}

// Get returns the post with the given id.
func (e *Engine) Get(id int) (storage.Post, error) {
	for _, p := range e.snapshot() {
		if p.ID == id {
			return p, nil
		}
	}
	return storage.Post{}, ErrNotFound
}

// Create validates the three required fields, stamps timestamps, assigns
// the next id and appends the new post. Id assignment and persist happen
// under the same lock so concurrent creates can never collide.
func (e *Engine) Create(title, author, content string) (storage.Post, error) {
	var missing []string
	if title == "" {
		missing = append(missing, "title")
	}
	if author == "" {
		missing = append(missing, "author")
	}
	if content == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return storage.Post{}, &ValidationError{Fields: missing}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	post := storage.Post{
		ID:       nextID(e.posts),
		Date:     now.Format(storage.DateLayout),
		Author:   author,
		Title:    title,
		Content:  content,
		SortDate: now.Format(storage.SortDateLayout),
	}

	next := make([]storage.Post, len(e.posts), len(e.posts)+1)
	copy(next, e.posts)
	next = append(next, post)

	if err := e.store.Save(next); err != nil {
		e.log.Error("create: save failed", "id", post.ID, "err", err)
		return storage.Post{}, &PersistenceError{Op: "create", Err: err}
	}
	e.posts = next

	e.log.Info("post created", "id", post.ID, "author", author)
	return post, nil
}

// Update merges the non-empty fields of upd over the post with the given
// id. Id, timestamps and likes are preserved. An update that supplies no
// usable data at all is rejected, not silently accepted.
func (e *Engine) Update(id int, upd PostUpdate) (storage.Post, error) {
	if upd.empty() {
		return storage.Post{}, &ValidationError{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := indexOf(e.posts, id)
	if idx < 0 {
		return storage.Post{}, ErrNotFound
	}

	next := make([]storage.Post, len(e.posts))
	copy(next, e.posts)

	if upd.Title != "" {
		next[idx].Title = upd.Title
	}
	if upd.Author != "" {
		next[idx].Author = upd.Author
	}
	if upd.Content != "" {
		next[idx].Content = upd.Content
	}

	if err := e.store.Save(next); err != nil {
		e.log.Error("update: save failed", "id", id, "err", err)
		return storage.Post{}, &PersistenceError{Op: "update", Err: err}
	}
	e.posts = next

	e.log.Info("post updated", "id", id)
	return next[idx], nil
}

// Delete permanently removes the post with the given id.
func (e *Engine) Delete(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := indexOf(e.posts, id)
	if idx < 0 {
		return ErrNotFound
	}

	next := make([]storage.Post, 0, len(e.posts)-1)
	next = append(next, e.posts[:idx]...)
	next = append(next, e.posts[idx+1:]...)

	if err := e.store.Save(next); err != nil {
		e.log.Error("delete: save failed", "id", id, "err", err)
		return &PersistenceError{Op: "delete", Err: err}
	}
	e.posts = next

	e.log.Info("post deleted", "id", id, "remaining", len(next))
	return nil
}

// Like increments the like counter of the post with the given id.
func (e *Engine) Like(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := indexOf(e.posts, id)
	if idx < 0 {
		return ErrNotFound
	}

	next := make([]storage.Post, len(e.posts))
	copy(next, e.posts)
	next[idx].Likes++

	if err := e.store.Save(next); err != nil {
		e.log.Error("like: save failed", "id", id, "err", err)
		return &PersistenceError{Op: "like", Err: err}
	}
	e.posts = next
	return nil
}

// List returns one page of the full collection plus its total size.
// totalPosts counts the whole collection regardless of pagination.
func (e *Engine) List(sortBy, direction string, page, pageSize int) ([]storage.Post, int) {
	snap := e.snapshot()
	sorted := SortPosts(snap, sortBy, direction)
	return Paginate(sorted, page, pageSize), len(snap)
}

// Search filters the collection by a case-insensitive substring match on
// the searchBy field, then sorts and paginates the filtered set.
// totalPosts counts the filtered set, not the whole collection.
func (e *Engine) Search(searchBy, term, sortBy, direction string, page, pageSize int) ([]storage.Post, int) {
	filtered := FilterPosts(e.snapshot(), searchBy, term)
	if len(filtered) == 0 {
		return []storage.Post{}, 0
	}
	sorted := SortPosts(filtered, sortBy, direction)
	return Paginate(sorted, page, pageSize), len(filtered)
}

func indexOf(posts []storage.Post, id int) int {
	for i, p := range posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}
