package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"socialshop/internal/apperror"
	"socialshop/internal/models"
	"socialshop/internal/testutil"
	"socialshop/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type postFixture struct {
	db    *gorm.DB
	svc   *PostService
	cache *utils.LRUCache
	owner models.User
	other models.User
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	conn := testutil.NewDB(t)
	cache, err := utils.NewLRUCache(16)
	require.NoError(t, err)

	return &postFixture{
		db:    conn,
		svc:   NewPostService(conn, NewUserService(conn), cache, time.Minute, nil),
		cache: cache,
		owner: testutil.CreateUser(t, conn, "U1", "a@x.com", "Alice"),
		other: testutil.CreateUser(t, conn, "U2", "b@x.com", "Bob"),
	}
}

func (f *postFixture) countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestCreateReturnsPostOwnedByCaller(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	post, err := f.svc.Create(ctx, "a@x.com", PostInput{Title: "Hello", Content: "World"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "U1", post.UserID)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, []string{}, post.Images)

	page, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "Hello", page.Posts[0].Title)
	assert.Equal(t, "World", page.Posts[0].Content)
	assert.Equal(t, "U1", page.Posts[0].UserID)
	assert.Equal(t, "Alice", page.Posts[0].User)
	assert.Contains(t, page.Posts[0].ContentHTML, "<p>World</p>")
}

func TestCreateAcceptsEmptyFields(t *testing.T) {
	f := newPostFixture(t)

	post, err := f.svc.Create(context.Background(), "a@x.com", PostInput{})
	require.NoError(t, err)
	assert.Equal(t, "", post.Title)
	assert.EqualValues(t, 1, f.countRows(t, &models.Post{}))
}

func TestMutationsWithUnknownEmailAreUnauthorized(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	existing := testutil.CreatePost(t, f.db, "U1", "Keep", time.Now())

	for _, email := range []string{"nobody@x.com", ""} {
		_, err := f.svc.Create(ctx, email, PostInput{Title: "x"})
		assert.True(t, apperror.Is(err, apperror.KindUnauthorized), "create %q", email)

		_, err = f.svc.Update(ctx, email, existing.ID, PostInput{Title: "x"})
		assert.True(t, apperror.Is(err, apperror.KindUnauthorized), "update %q", email)

		err = f.svc.Delete(ctx, email, existing.ID)
		assert.True(t, apperror.Is(err, apperror.KindUnauthorized), "delete %q", email)
	}

	var stored models.Post
	require.NoError(t, f.db.First(&stored, "id = ?", existing.ID).Error)
	assert.Equal(t, "Keep", stored.Title)
	assert.EqualValues(t, 1, f.countRows(t, &models.Post{}))
}

func TestUpdateOverwritesAllFields(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "a@x.com", PostInput{
		Title: "Old", Content: "Old body", Images: []string{"/a.png", "/b.png"},
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, "a@x.com", created.ID, PostInput{Title: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "", updated.Content)
	assert.Equal(t, []string{}, updated.Images)

	var stored models.Post
	require.NoError(t, f.db.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, "New", stored.Title)
	assert.Equal(t, "", stored.Content)
	assert.Equal(t, []string{}, stored.Images)
}

func TestUpdateOtherUsersPostIsNotFound(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, "U2", "Bob's", time.Now())

	_, err := f.svc.Update(ctx, "a@x.com", post.ID, PostInput{Title: "Hijacked"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, apperror.MsgPostNotFound, err.Error())

	var stored models.Post
	require.NoError(t, f.db.First(&stored, "id = ?", post.ID).Error)
	assert.Equal(t, "Bob's", stored.Title)

	_, err = f.svc.Update(ctx, "a@x.com", "missing", PostInput{})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestDeleteRemovesPostCommentsAndLikes(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	now := time.Now()

	doomed := testutil.CreatePost(t, f.db, "U1", "Doomed", now)
	kept := testutil.CreatePost(t, f.db, "U1", "Kept", now.Add(-time.Hour))
	testutil.CreateComment(t, f.db, doomed.ID, "U2", "nice", now)
	testutil.CreateComment(t, f.db, kept.ID, "U2", "also nice", now)
	testutil.CreateLike(t, f.db, doomed.ID, "U2")
	testutil.CreateLike(t, f.db, kept.ID, "U2")

	require.NoError(t, f.svc.Delete(ctx, "a@x.com", doomed.ID))

	assert.EqualValues(t, 1, f.countRows(t, &models.Post{}))
	assert.EqualValues(t, 1, f.countRows(t, &models.Comment{}))
	assert.EqualValues(t, 1, f.countRows(t, &models.Like{}))

	page, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Size)
	for _, p := range page.Posts {
		assert.NotEqual(t, doomed.ID, p.ID)
	}
}

func TestDeleteOtherUsersPostIsNotFound(t *testing.T) {
	f := newPostFixture(t)
	post := testutil.CreatePost(t, f.db, "U2", "Bob's", time.Now())
	testutil.CreateComment(t, f.db, post.ID, "U1", "hi", time.Now())

	err := f.svc.Delete(context.Background(), "a@x.com", post.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.EqualValues(t, 1, f.countRows(t, &models.Post{}))
	assert.EqualValues(t, 1, f.countRows(t, &models.Comment{}))
}

func TestDeleteRollsBackWhenPostDeleteFails(t *testing.T) {
	f := newPostFixture(t)
	post := testutil.CreatePost(t, f.db, "U1", "Sticky", time.Now())
	testutil.CreateComment(t, f.db, post.ID, "U2", "c", time.Now())
	testutil.CreateLike(t, f.db, post.ID, "U2")

	err := f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_post_delete", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "posts" {
			tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), "a@x.com", post.ID)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInternal))

	assert.EqualValues(t, 1, f.countRows(t, &models.Post{}))
	assert.EqualValues(t, 1, f.countRows(t, &models.Comment{}))
	assert.EqualValues(t, 1, f.countRows(t, &models.Like{}))
}

func TestListPagesNewestFirst(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 23; i++ {
		testutil.CreatePost(t, f.db, "U1", fmt.Sprintf("post-%02d", i), base.Add(time.Duration(i)*time.Minute))
	}

	first, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 23, first.Size)
	require.Len(t, first.Posts, PostPageSize)
	assert.Equal(t, "post-22", first.Posts[0].Title)
	for i := 1; i < len(first.Posts); i++ {
		assert.True(t, !first.Posts[i].CreatedAt.After(first.Posts[i-1].CreatedAt))
	}

	third, err := f.svc.List(ctx, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 23, third.Size)
	require.Len(t, third.Posts, 3)
	assert.Equal(t, "post-00", third.Posts[2].Title)

	beyond, err := f.svc.List(ctx, 9)
	require.NoError(t, err)
	assert.EqualValues(t, 23, beyond.Size)
	assert.Empty(t, beyond.Posts)

	zero, err := f.svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, first.Posts[0].ID, zero.Posts[0].ID)
}

func TestListIncludesCommentsAndLikes(t *testing.T) {
	f := newPostFixture(t)
	now := time.Now()
	post := testutil.CreatePost(t, f.db, "U1", "Chatty", now)
	older := testutil.CreateComment(t, f.db, post.ID, "U2", "first", now.Add(-time.Minute))
	newer := testutil.CreateComment(t, f.db, post.ID, "U1", "second", now)
	testutil.CreateLike(t, f.db, post.ID, "U2")

	page, err := f.svc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)

	view := page.Posts[0]
	assert.Equal(t, "/img/U1.png", view.UserImage)
	require.Len(t, view.Comments, 2)
	assert.Equal(t, newer.ID, view.Comments[0].CommentID)
	assert.Equal(t, "Alice", view.Comments[0].Username)
	assert.Equal(t, older.ID, view.Comments[1].CommentID)
	assert.Equal(t, "Bob", view.Comments[1].Username)
	assert.Equal(t, "/img/U2.png", view.Comments[1].UserImage)
	assert.Equal(t, []LikeView{{UserID: "U2"}}, view.Likes)
}

func TestListCacheIsInvalidatedByWrites(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	_, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.Len())

	// Rows written behind the service's back stay hidden until a write
	// through the service drops the cached page.
	testutil.CreatePost(t, f.db, "U2", "Sneaky", time.Now())
	cached, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, cached.Size)

	_, err = f.svc.Create(ctx, "a@x.com", PostInput{Title: "Visible"})
	require.NoError(t, err)
	assert.Equal(t, 0, f.cache.Len())

	fresh, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, fresh.Size)
}

func TestWritesScheduleEvents(t *testing.T) {
	conn := testutil.NewDB(t)
	testutil.CreateUser(t, conn, "U1", "a@x.com", "Alice")
	pub := &recordingPublisher{}
	events := NewEventDispatcher(pub, 10)
	svc := NewPostService(conn, NewUserService(conn), nil, 0, events)
	ctx := context.Background()

	post, err := svc.Create(ctx, "a@x.com", PostInput{Title: "t"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, "a@x.com", post.ID, PostInput{Title: "t2"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "a@x.com", post.ID))
	events.Close()

	var subjects []string
	for _, m := range pub.Messages() {
		subjects = append(subjects, m.subject)
	}
	assert.Equal(t, []string{"posts.created", "posts.updated", "posts.deleted"}, subjects)
}

func TestGetPost(t *testing.T) {
	f := newPostFixture(t)
	post := testutil.CreatePost(t, f.db, "U1", "Single", time.Now())

	view, err := f.svc.Get(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Single", view.Title)
	assert.Equal(t, "Alice", view.User)

	_, err = f.svc.Get(context.Background(), "missing")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
