package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostfound/backend/internal/db"
	"github.com/lostfound/backend/internal/models"
	"github.com/lostfound/backend/internal/query"
)

func setCount(f *fixture, pred query.Predicate, n int64) {
	sql, args, _ := pred.ToSql()
	f.posts.counts[countKey(sql, args)] = n
}

func TestUserProfile(t *testing.T) {
	f := newFixture("u1")
	f.comments.add(models.Comment{PostID: "p", AuthorID: "u1"})
	f.comments.add(models.Comment{PostID: "p", AuthorID: "u1"})
	setCount(f, query.AuthorPredicate("u1", ""), 4)

	svc := NewUserService(f.stores, NewPostService(f.stores))

	profile, err := svc.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), profile.Stats.PostsCount)
	assert.Equal(t, int64(2), profile.Stats.CommentsCount)
	assert.Nil(t, profile.Location)

	byName, err := svc.GetByUsername(context.Background(), "user-u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)

	_, err = svc.GetByID(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserUpdateProfile(t *testing.T) {
	f := newFixture("u1")
	svc := NewUserService(f.stores, NewPostService(f.stores))

	city := "Porto"
	public := true
	profile, err := svc.UpdateProfile(context.Background(), "u1", UpdateProfileInput{City: &city, PublicProfile: &public})
	require.NoError(t, err)
	require.NotNil(t, profile.Location)
	assert.Equal(t, "Porto", profile.Location.City)
	assert.True(t, profile.Preferences.PublicProfile)

	_, err = svc.UpdateProfile(context.Background(), "ghost", UpdateProfileInput{City: &city})
	assert.ErrorIs(t, err, ErrNotFound)

	long := string(make([]byte, 501))
	_, err = svc.UpdateProfile(context.Background(), "u1", UpdateProfileInput{Bio: &long})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUserStats(t *testing.T) {
	f := newFixture("u1")
	setCount(f, query.AuthorPredicate("u1", ""), 10)
	setCount(f, query.AuthorPredicate("u1", models.StatusReturned), 3)
	setCount(f, query.AuthorPredicate("u1", models.StatusClosed), 2)
	for i := 0; i < 5; i++ {
		f.comments.add(models.Comment{PostID: "p", AuthorID: "u1"})
	}

	stats, err := NewUserService(f.stores, NewPostService(f.stores)).Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, UserStats{
		TotalPosts:        10,
		ActivePosts:       5,
		ResolvedPosts:     3,
		TotalComments:     5,
		SuccessfulReturns: 3,
		Reputation:        3*10 + 5*2,
	}, stats)
}

func TestUserPosts(t *testing.T) {
	f := newFixture("u1")
	f.posts.add(models.Post{AuthorID: "u1"})
	svc := NewUserService(f.stores, NewPostService(f.stores))

	page, err := svc.Posts(context.Background(), "u1", query.Params{Page: 1, Limit: 10}, "")
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)

	sql, args, err := f.posts.lastPred.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(posts.author_id = ?)", sql)
	assert.Equal(t, []interface{}{"u1"}, args)
}

func TestSearchPosts(t *testing.T) {
	f := newFixture("u1")
	f.posts.add(models.Post{Title: "Lost umbrella", AuthorID: "u1"})
	svc := NewSearchService(NewPostService(f.stores))

	page, err := svc.Posts(context.Background(), "  umbrella ", query.Params{}, "")
	require.NoError(t, err)
	assert.Equal(t, "umbrella", page.Query)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page.Page)

	sql, _, err := f.posts.lastPred.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "posts.country ILIKE ?")

	_, err = svc.Posts(context.Background(), "   ", query.Params{}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture("u1")
	setCount(f, query.AuthorPredicate("u1", ""), 6)
	setCount(f, query.AuthorPredicate("u1", models.StatusLost), 3)
	setCount(f, query.AuthorPredicate("u1", models.StatusFound), 2)
	setCount(f, query.AuthorPredicate("u1", models.StatusReturned), 1)
	f.comments.add(models.Comment{PostID: "p", AuthorID: "u1"})
	f.likes.rows[likeKey{db.LikePost, "u1", "p"}] = true
	f.likes.rows[likeKey{db.LikeComment, "u1", "c"}] = true

	svc := NewDashboardService(f.stores, NewPostService(f.stores))
	stats, err := svc.Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, DashboardStats{
		TotalPosts:    6,
		LostPosts:     3,
		FoundPosts:    2,
		ReturnedPosts: 1,
		TotalComments: 1,
		TotalLikes:    2,
	}, stats)
}

func TestDashboardMyPosts(t *testing.T) {
	f := newFixture("u1")
	mine := f.posts.add(models.Post{AuthorID: "u1", Status: models.StatusLost})
	f.likes.rows[likeKey{db.LikePost, "u1", mine.ID}] = true

	page, err := NewDashboardService(f.stores, NewPostService(f.stores)).MyPosts(context.Background(), "u1", "lost", query.Params{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.True(t, page.Data[0].IsLiked)

	_, args, err := f.posts.lastPred.ToSql()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"u1", "LOST"}, args)
}
