package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lostfound/backend/internal/db"
	"github.com/lostfound/backend/internal/models"
	"github.com/lostfound/backend/internal/query"
)

var clock = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

func tick() time.Time {
	clock = clock.Add(time.Second)
	return clock
}

type fakePosts struct {
	mu       sync.Mutex
	rows     map[string]*models.Post
	lastPred query.Predicate
	counts   map[string]int64
	deleted  []string
}

func newFakePosts() *fakePosts {
	return &fakePosts{rows: map[string]*models.Post{}, counts: map[string]int64{}}
}

func (f *fakePosts) add(p models.Post) *models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = tick()
		p.UpdatedAt = p.CreatedAt
	}
	f.rows[p.ID] = &p
	return &p
}

func (f *fakePosts) List(ctx context.Context, pred query.Predicate, offset, limit int) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPred = pred

	all := make([]models.Post, 0, len(f.rows))
	for _, p := range f.rows {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakePosts) Count(ctx context.Context, pred query.Predicate) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pred != nil {
		sql, args, err := pred.ToSql()
		if err != nil {
			return 0, err
		}
		if n, ok := f.counts[countKey(sql, args)]; ok {
			return n, nil
		}
	}
	return int64(len(f.rows)), nil
}

func countKey(sql string, args []interface{}) string {
	key := sql
	for _, a := range args {
		if s, ok := a.(string); ok {
			key += "|" + s
		}
	}
	return key
}

func (f *fakePosts) GetByID(ctx context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) Create(ctx context.Context, post *models.Post, categoryName string) error {
	post.Category = models.Category{Name: categoryName}
	stored := f.add(*post)
	post.ID = stored.ID
	return nil
}

func (f *fakePosts) Update(ctx context.Context, id string, changes map[string]interface{}, categoryName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.rows[id]
	for column, value := range changes {
		switch column {
		case "title":
			p.Title = value.(string)
		case "status":
			p.Status = value.(string)
		case "preferred_contact":
			p.PreferredContact = value.(string)
		case "reward":
			r := value.(float64)
			p.Reward = &r
		}
	}
	if categoryName != "" {
		p.Category = models.Category{Name: categoryName}
	}
	return nil
}

func (f *fakePosts) Delete(ctx context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, post.ID)
	f.deleted = append(f.deleted, post.ID)
	return nil
}

type fakeComments struct {
	mu   sync.Mutex
	rows map[string]*models.Comment
}

func newFakeComments() *fakeComments {
	return &fakeComments{rows: map[string]*models.Comment{}}
}

func (f *fakeComments) add(c models.Comment) *models.Comment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = tick()
		c.UpdatedAt = c.CreatedAt
	}
	c.Author = models.User{ID: c.AuthorID, Username: "user-" + c.AuthorID}
	f.rows[c.ID] = &c
	return &c
}

func (f *fakeComments) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeComments) sorted(keep func(c *models.Comment) bool, newestFirst bool) []models.Comment {
	var out []models.Comment
	for _, c := range f.rows {
		if keep(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (f *fakeComments) ListTopLevel(ctx context.Context, postID string, offset, limit int) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.sorted(func(c *models.Comment) bool { return c.PostID == postID && c.ParentID == nil }, true)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeComments) CountTopLevel(ctx context.Context, postID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.sorted(func(c *models.Comment) bool { return c.PostID == postID && c.ParentID == nil }, true))), nil
}

func (f *fakeComments) Replies(ctx context.Context, parentIDs []string) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parents := map[string]bool{}
	for _, id := range parentIDs {
		parents[id] = true
	}
	return f.sorted(func(c *models.Comment) bool { return c.ParentID != nil && parents[*c.ParentID] }, false), nil
}

func (f *fakeComments) CountByAuthor(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.sorted(func(c *models.Comment) bool { return c.AuthorID == userID }, false))), nil
}

func (f *fakeComments) Create(ctx context.Context, comment *models.Comment) error {
	stored := f.add(*comment)
	comment.ID = stored.ID
	return nil
}

func (f *fakeComments) UpdateContent(ctx context.Context, id, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].Content = content
	return nil
}

func (f *fakeComments) Delete(ctx context.Context, comment *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, comment.ID)
	return nil
}

type likeKey struct {
	target db.LikeTarget
	user   string
	id     string
}

type fakeLikes struct {
	mu    sync.Mutex
	rows  map[likeKey]bool
	racer bool // Exists misses, Create hits the unique index
}

func newFakeLikes() *fakeLikes {
	return &fakeLikes{rows: map[likeKey]bool{}}
}

func (f *fakeLikes) Exists(ctx context.Context, target db.LikeTarget, userID, targetID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.racer {
		return false, nil
	}
	return f.rows[likeKey{target, userID, targetID}], nil
}

func (f *fakeLikes) Create(ctx context.Context, target db.LikeTarget, userID, targetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := likeKey{target, userID, targetID}
	if f.rows[k] {
		return db.ErrDuplicate
	}
	f.rows[k] = true
	return nil
}

func (f *fakeLikes) Delete(ctx context.Context, target db.LikeTarget, userID, targetID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := likeKey{target, userID, targetID}
	existed := f.rows[k]
	delete(f.rows, k)
	return existed, nil
}

func (f *fakeLikes) LikedBy(ctx context.Context, target db.LikeTarget, userID string, targetIDs []string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]bool{}
	if userID == "" {
		return out, nil
	}
	for _, id := range targetIDs {
		if f.rows[likeKey{target, userID, id}] {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeLikes) Counts(ctx context.Context, target db.LikeTarget, targetIDs []string) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range targetIDs {
		wanted[id] = true
	}
	out := map[string]int64{}
	for k := range f.rows {
		if k.target == target && wanted[k.id] {
			out[k.id]++
		}
	}
	return out, nil
}

func (f *fakeLikes) CountByUser(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k := range f.rows {
		if k.user == userID {
			n++
		}
	}
	return n, nil
}

type fakeUsers struct {
	mu   sync.Mutex
	rows map[string]*models.User
}

func newFakeUsers(ids ...string) *fakeUsers {
	f := &fakeUsers{rows: map[string]*models.User{}}
	for _, id := range ids {
		f.rows[id] = &models.User{ID: id, Username: "user-" + id, CreatedAt: clock, UpdatedAt: clock}
	}
	return f
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) Update(ctx context.Context, id string, changes map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	if v, ok := changes["city"]; ok {
		u.City = v.(string)
	}
	if v, ok := changes["bio"]; ok {
		u.Bio = v.(string)
	}
	if v, ok := changes["public_profile"]; ok {
		u.PublicProfile = v.(bool)
	}
	return true, nil
}

type fixture struct {
	posts    *fakePosts
	comments *fakeComments
	likes    *fakeLikes
	users    *fakeUsers
	stores   Stores
}

func newFixture(userIDs ...string) *fixture {
	f := &fixture{
		posts:    newFakePosts(),
		comments: newFakeComments(),
		likes:    newFakeLikes(),
		users:    newFakeUsers(userIDs...),
	}
	f.stores = Stores{Posts: f.posts, Comments: f.comments, Likes: f.likes, Users: f.users}
	return f
}
