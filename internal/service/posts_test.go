package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostfound/backend/internal/db"
	"github.com/lostfound/backend/internal/models"
	"github.com/lostfound/backend/internal/query"
)

func validPostInput() CreatePostInput {
	return CreatePostInput{
		Title:            "Found keys",
		Description:      "Bunch of keys near the park",
		Category:         "Keys",
		Status:           "found",
		PreferredContact: "phone",
		Tags:             []string{" keys", "", "park "},
		Images:           []string{"https://cdn.example.com/uploads/keys.jpg"},
	}
}

func TestPostCreate(t *testing.T) {
	f := newFixture("u1")
	svc := NewPostService(f.stores)

	post, err := svc.Create(context.Background(), "u1", validPostInput())
	require.NoError(t, err)

	assert.Equal(t, "found", post.Status)
	assert.Equal(t, "phone", post.ContactInfo.PreferredContact)
	assert.Equal(t, "Keys", post.Category)
	assert.Equal(t, []string{"keys", "park"}, post.Tags)
	assert.Equal(t, []string{"https://cdn.example.com/uploads/keys.jpg"}, post.Images)

	stored := f.posts.rows[post.ID]
	require.NotNil(t, stored)
	assert.Equal(t, models.StatusFound, stored.Status)
	assert.Equal(t, models.ContactPhone, stored.PreferredContact)
	assert.Equal(t, "keys.jpg", stored.Images[0].Filename)
}

func TestPostCreateDefaultsPreferredContact(t *testing.T) {
	f := newFixture("u1")
	in := validPostInput()
	in.PreferredContact = ""

	post, err := NewPostService(f.stores).Create(context.Background(), "u1", in)
	require.NoError(t, err)
	assert.Equal(t, "email", post.ContactInfo.PreferredContact)
}

func TestPostCreateValidation(t *testing.T) {
	f := newFixture("u1")
	svc := NewPostService(f.stores)

	negative := -5.0
	tests := []struct {
		name  string
		mod   func(in *CreatePostInput)
		field string
	}{
		{"missing title", func(in *CreatePostInput) { in.Title = "" }, "title"},
		{"bad status", func(in *CreatePostInput) { in.Status = "stolen" }, "status"},
		{"negative reward", func(in *CreatePostInput) { in.Reward = &negative }, "reward"},
		{"bad contact", func(in *CreatePostInput) { in.PreferredContact = "fax" }, "preferredContact"},
		{"bad email", func(in *CreatePostInput) { in.ContactEmail = "nope" }, "contactEmail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validPostInput()
			tt.mod(&in)

			_, err := svc.Create(context.Background(), "u1", in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
	assert.Empty(t, f.posts.rows)
}

func TestPostCreateUnknownAuthor(t *testing.T) {
	f := newFixture()
	_, err := NewPostService(f.stores).Create(context.Background(), "ghost", validPostInput())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostListBuildsEnvelope(t *testing.T) {
	f := newFixture("u1", "u2")
	for i := 0; i < 12; i++ {
		f.posts.add(models.Post{Title: "post", Status: models.StatusLost, AuthorID: "u1", Author: models.User{ID: "u1"}})
	}
	newest := f.posts.add(models.Post{Title: "newest", Status: models.StatusFound, AuthorID: "u1"})
	f.likes.rows[likeKey{db.LikePost, "u2", newest.ID}] = true

	svc := NewPostService(f.stores)
	filter := query.PostFilter{Status: "found", Location: "Oslo", Search: "cat"}

	page, err := svc.List(context.Background(), filter, query.Params{Page: 1, Limit: 5}, "u2")
	require.NoError(t, err)

	assert.Equal(t, int64(13), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrev)
	require.Len(t, page.Data, 5)
	assert.Equal(t, "newest", page.Data[0].Title)
	assert.True(t, page.Data[0].IsLiked)
	assert.False(t, page.Data[1].IsLiked)

	sql, _, err := f.posts.lastPred.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "posts.city ILIKE ?")
	assert.Contains(t, sql, "posts.title ILIKE ?")

	anon, err := svc.List(context.Background(), filter, query.Params{Page: 1, Limit: 5}, "")
	require.NoError(t, err)
	assert.False(t, anon.Data[0].IsLiked)
}

func TestPostListClampsLimit(t *testing.T) {
	f := newFixture()
	page, err := NewPostService(f.stores).List(context.Background(), query.PostFilter{}, query.Params{Page: 1, Limit: 500}, "")
	require.NoError(t, err)
	assert.Equal(t, query.MaxLimit, page.Limit)
	assert.Equal(t, 0, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrev)
}

func TestPostGetNotFound(t *testing.T) {
	f := newFixture()
	_, err := NewPostService(f.stores).Get(context.Background(), "missing", "")

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Post", nf.Entity)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostUpdateRequiresAuthor(t *testing.T) {
	f := newFixture("u1", "u2")
	post := f.posts.add(models.Post{Title: "old", Status: models.StatusLost, AuthorID: "u1"})
	svc := NewPostService(f.stores)

	title := "hijacked"
	_, err := svc.Update(context.Background(), post.ID, "u2", UpdatePostInput{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "old", f.posts.rows[post.ID].Title)

	status := "returned"
	reward := 10.0
	updated, err := svc.Update(context.Background(), post.ID, "u1", UpdatePostInput{Status: &status, Reward: &reward})
	require.NoError(t, err)
	assert.Equal(t, "returned", updated.Status)
	assert.Equal(t, models.StatusReturned, f.posts.rows[post.ID].Status)
	require.NotNil(t, updated.Reward)
	assert.Equal(t, 10.0, *updated.Reward)

	_, err = svc.Update(context.Background(), "missing", "u1", UpdatePostInput{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostDelete(t *testing.T) {
	f := newFixture("u1", "u2")
	post := f.posts.add(models.Post{AuthorID: "u1"})
	svc := NewPostService(f.stores)

	_, err := svc.Delete(context.Background(), post.ID, "u2")
	assert.ErrorIs(t, err, ErrForbidden)

	msg, err := svc.Delete(context.Background(), post.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Post deleted successfully", msg.Message)
	assert.Equal(t, []string{post.ID}, f.posts.deleted)

	_, err = svc.Delete(context.Background(), post.ID, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostLikeTwiceIsForbidden(t *testing.T) {
	f := newFixture("u1", "u2")
	post := f.posts.add(models.Post{AuthorID: "u1"})
	svc := NewPostService(f.stores)

	msg, err := svc.Like(context.Background(), post.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, "Post liked successfully", msg.Message)

	_, err = svc.Like(context.Background(), post.ID, "u2")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPostLikeRaceMapsToForbidden(t *testing.T) {
	f := newFixture("u1", "u2")
	post := f.posts.add(models.Post{AuthorID: "u1"})
	f.likes.rows[likeKey{db.LikePost, "u2", post.ID}] = true
	f.likes.racer = true

	_, err := NewPostService(f.stores).Like(context.Background(), post.ID, "u2")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPostLikeMissingPost(t *testing.T) {
	f := newFixture("u1")
	_, err := NewPostService(f.stores).Like(context.Background(), "missing", "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostUnlikeWithoutLikeIsNotFound(t *testing.T) {
	f := newFixture("u1", "u2")
	post := f.posts.add(models.Post{AuthorID: "u1"})
	svc := NewPostService(f.stores)

	_, err := svc.Unlike(context.Background(), post.ID, "u2")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Like", nf.Entity)

	_, err = svc.Like(context.Background(), post.ID, "u2")
	require.NoError(t, err)
	msg, err := svc.Unlike(context.Background(), post.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, "Post unliked successfully", msg.Message)
}
