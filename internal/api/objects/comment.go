package objects

import (
	"sort"

	"github.com/lostfound/backend/internal/models"
)

// Comment is the client-facing form of a comment and its replies
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	PostID    string    `json:"postId"`
	ParentID  *string   `json:"parentId"`
	Replies   []Comment `json:"replies"`
	Likes     int64     `json:"likes"`
	IsLiked   bool      `json:"isLiked"`
	IsAuthor  bool      `json:"isAuthor"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

// CommentTree indexes loaded comment rows by id with parent edges so any
// subtree can be projected, whatever its depth.
type CommentTree struct {
	nodes    map[string]*models.Comment
	children map[string][]string
	likes    map[string]int64
	liked    map[string]bool
	viewer   string
}

// NewCommentTree builds the arena. likes holds per-comment like totals and
// liked the comments the viewer likes; viewer is empty for anonymous requests.
func NewCommentTree(rows []models.Comment, likes map[string]int64, liked map[string]bool, viewer string) *CommentTree {
	t := &CommentTree{
		nodes:    make(map[string]*models.Comment, len(rows)),
		children: make(map[string][]string),
		likes:    likes,
		liked:    liked,
		viewer:   viewer,
	}

	for i := range rows {
		if _, dup := t.nodes[rows[i].ID]; dup {
			continue
		}
		t.nodes[rows[i].ID] = &rows[i]
	}
	for id, c := range t.nodes {
		if c.ParentID != nil {
			t.children[*c.ParentID] = append(t.children[*c.ParentID], id)
		}
	}

	// replies read oldest first
	for parent, ids := range t.children {
		sort.Slice(ids, func(i, j int) bool {
			a, b := t.nodes[ids[i]], t.nodes[ids[j]]
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID < b.ID
			}
			return a.CreatedAt.Before(b.CreatedAt)
		})
		t.children[parent] = ids
	}

	return t
}

// Project maps the given roots, in order, with all their loaded replies.
// Ids missing from the arena are skipped.
func (t *CommentTree) Project(rootIDs []string) []Comment {
	out := make([]Comment, 0, len(rootIDs))
	for _, id := range rootIDs {
		if c, ok := t.project(id, map[string]bool{}); ok {
			out = append(out, c)
		}
	}
	return out
}

// ProjectOne maps a single comment with its replies
func (t *CommentTree) ProjectOne(id string) (Comment, bool) {
	return t.project(id, map[string]bool{})
}

func (t *CommentTree) project(id string, path map[string]bool) (Comment, bool) {
	row, ok := t.nodes[id]
	if !ok || path[id] {
		return Comment{}, false
	}
	path[id] = true
	defer delete(path, id)

	replies := make([]Comment, 0, len(t.children[id]))
	for _, childID := range t.children[id] {
		if reply, ok := t.project(childID, path); ok {
			replies = append(replies, reply)
		}
	}

	return Comment{
		ID:        row.ID,
		Content:   row.Content,
		Author:    NewAuthor(&row.Author),
		PostID:    row.PostID,
		ParentID:  row.ParentID,
		Replies:   replies,
		Likes:     t.likes[id],
		IsLiked:   t.viewer != "" && t.liked[id],
		IsAuthor:  t.viewer != "" && t.viewer == row.AuthorID,
		CreatedAt: formatTime(row.CreatedAt),
		UpdatedAt: formatTime(row.UpdatedAt),
	}, true
}
