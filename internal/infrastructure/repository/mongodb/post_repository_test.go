package mongodb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/lllypuk/styx/internal/domain/errs"
	"github.com/lllypuk/styx/internal/domain/post"
	infra "github.com/lllypuk/styx/internal/infrastructure/mongodb"
	"github.com/lllypuk/styx/internal/infrastructure/repository/mongodb"
	"github.com/lllypuk/styx/tests/testutil"
)

var baseTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func setupPostRepository(t *testing.T) *mongodb.MongoPostRepository {
	t.Helper()
	db := testutil.SetupTestMongoDB(t)
	require.NoError(t, infra.CreateAllIndexes(context.Background(), db))
	return mongodb.NewMongoPostRepository(db.Collection(infra.CollectionPosts))
}

func TestMongoPostRepository_ThreadRoundTrip(t *testing.T) {
	repo := setupPostRepository(t)
	ctx := context.Background()
	p := testutil.NewPostFixture(t, "auth0|owner", "running", baseTime)

	c, err := p.AddComment(testutil.CommentParamsFixture("auth0|a"), baseTime)
	require.NoError(t, err)
	r, err := p.AddReply(c.ID(), testutil.CommentParamsFixture("auth0|b"), baseTime)
	require.NoError(t, err)
	_, err = p.ToggleLikeOn("auth0|c", post.TargetRef{CommentID: c.ID(), ReplyID: r.ID()})
	require.NoError(t, err)
	_, err = p.DeleteComment("auth0|a", post.TargetRef{CommentID: c.ID()})
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, p))

	loaded, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)

	require.Len(t, loaded.Comments(), 1)
	comment := loaded.Comments()[0]
	assert.True(t, comment.IsDeleted())
	assert.Nil(t, comment.OwnerSubjectID())
	assert.Equal(t, post.CommentTombstone, comment.Text())

	require.Len(t, comment.Replies(), 1)
	reply := comment.Replies()[0]
	assert.True(t, reply.IsReply())
	assert.Equal(t, []string{"auth0|c"}, reply.Likes())
	assert.Equal(t, 1, reply.LikesCount())
	assert.Empty(t, reply.Replies())
}

func TestMongoPostRepository_FindByTypeNewestFirst(t *testing.T) {
	repo := setupPostRepository(t)
	ctx := context.Background()

	older := testutil.NewPostFixture(t, "auth0|x", "reading", baseTime)
	newer := testutil.NewPostFixture(t, "auth0|y", "reading", baseTime.Add(time.Hour))
	other := testutil.NewPostFixture(t, "auth0|x", "cooking", baseTime)
	for _, p := range []*post.Post{older, newer, other} {
		require.NoError(t, repo.Insert(ctx, p))
	}

	posts, err := repo.FindByType(ctx, "reading")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID(), posts[0].ID())
	assert.Equal(t, older.ID(), posts[1].ID())

	none, err := repo.FindByType(ctx, "gardening")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMongoPostRepository_CountByOwnerSince(t *testing.T) {
	repo := setupPostRepository(t)
	ctx := context.Background()
	midnight := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	yesterday := testutil.NewPostFixture(t, "auth0|me", "running", midnight.Add(-time.Minute))
	today := testutil.NewPostFixture(t, "auth0|me", "running", midnight)
	someoneElse := testutil.NewPostFixture(t, "auth0|you", "running", midnight.Add(time.Hour))
	for _, p := range []*post.Post{yesterday, today, someoneElse} {
		require.NoError(t, repo.Insert(ctx, p))
	}

	count, err := repo.CountByOwnerSince(ctx, "auth0|me", midnight)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMongoPostRepository_ReplaceAndDeleteAreConditional(t *testing.T) {
	repo := setupPostRepository(t)
	ctx := context.Background()
	p := testutil.NewPostFixture(t, "auth0|me", "running", baseTime)
	require.NoError(t, repo.Insert(ctx, p))

	stale, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)

	p.ToggleLike("auth0|a")
	require.NoError(t, repo.Replace(ctx, p))
	assert.Equal(t, int64(2), p.Version())

	stale.ToggleLike("auth0|b")
	require.ErrorIs(t, repo.Replace(ctx, stale), errs.ErrConcurrentModification)
	require.ErrorIs(t, repo.Delete(ctx, p.ID(), 1), errs.ErrConcurrentModification)

	require.NoError(t, repo.Delete(ctx, p.ID(), 2))
	_, err = repo.FindByID(ctx, p.ID())
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, p.ID(), 2), errs.ErrNotFound)
}

func TestMongoPostRepository_LegacyTombstone(t *testing.T) {
	db := testutil.SetupTestMongoDB(t)
	repo := mongodb.NewMongoPostRepository(db.Collection(infra.CollectionPosts))
	ctx := context.Background()

	_, err := db.Collection(infra.CollectionPosts).InsertOne(ctx, bson.M{
		"_id":            "5e0f5c1a-2f1e-4d3b-8c55-0f5c2b1d6a01",
		"postType":       "running",
		"ownerSubjectId": "auth0|me",
		"authorName":     "Me",
		"authorEmail":    "me@example.com",
		"caption":        "5k",
		"createdAt":      baseTime,
		"comments": bson.A{bson.M{
			"commentId":      "5e0f5c1a-2f1e-4d3b-8c55-0f5c2b1d6a02",
			"ownerSubjectId": nil,
			"authorName":     "User",
			"text":           post.CommentTombstone,
			"email":          nil,
			"createdAt":      baseTime,
		}},
	})
	require.NoError(t, err)

	p, err := repo.FindByID(ctx, "5e0f5c1a-2f1e-4d3b-8c55-0f5c2b1d6a01")
	require.NoError(t, err)
	require.Len(t, p.Comments(), 1)
	assert.True(t, p.Comments()[0].IsDeleted())
	assert.Empty(t, p.Likes())
}

func TestMongoCatalogRepositories(t *testing.T) {
	db := testutil.SetupTestMongoDB(t)
	ctx := context.Background()

	_, err := db.Collection(infra.CollectionBadges).InsertMany(ctx, []any{
		bson.M{"_id": "gold", "imageUrl": "https://cdn/gold.png", "cost": 1000},
		bson.M{"_id": bson.NewObjectID(), "imageUrl": "https://cdn/bronze.png", "cost": 100},
	})
	require.NoError(t, err)
	_, err = db.Collection(infra.CollectionCategories).InsertOne(ctx, bson.M{
		"_id": "running", "postType": "running", "title": "Running", "caption": "Log a run", "mediaUrl": "https://cdn/run.png",
	})
	require.NoError(t, err)

	badges, err := mongodb.NewMongoBadgeRepository(db.Collection(infra.CollectionBadges), nil).List(ctx)
	require.NoError(t, err)
	require.Len(t, badges, 2)
	assert.Equal(t, 100, badges[0].Cost)
	assert.NotEmpty(t, badges[0].ID)
	assert.Equal(t, "gold", badges[1].ID)

	categories, err := mongodb.NewMongoCategoryRepository(db.Collection(infra.CollectionCategories), nil).List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Running", categories[0].Title)
}

func TestMongoPostRepository_StoresRepliesArrayOnEveryNode(t *testing.T) {
	db := testutil.SetupTestMongoDB(t)
	coll := db.Collection(infra.CollectionPosts)
	repo := mongodb.NewMongoPostRepository(coll)
	ctx := context.Background()

	p := testutil.NewPostFixture(t, "auth0|owner", "running", baseTime)
	c, err := p.AddComment(testutil.CommentParamsFixture("auth0|a"), baseTime)
	require.NoError(t, err)
	_, err = p.AddReply(c.ID(), testutil.CommentParamsFixture("auth0|b"), baseTime)
	require.NoError(t, err)
	_, err = p.AddComment(testutil.CommentParamsFixture("auth0|c"), baseTime)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, p))

	raw, err := coll.FindOne(ctx, bson.M{"_id": p.ID().String()}).Raw()
	require.NoError(t, err)

	for _, path := range [][]string{
		{"comments", "0", "replies"},
		{"comments", "0", "replies", "0", "replies"},
		{"comments", "1", "replies"},
	} {
		value, lookupErr := raw.LookupErr(path...)
		require.NoError(t, lookupErr, path)
		assert.Equal(t, bson.TypeArray, value.Type, path)
	}

	replies, err := raw.Lookup("comments", "0", "replies").Array().Values()
	require.NoError(t, err)
	assert.Len(t, replies, 1)

	nested, err := raw.Lookup("comments", "0", "replies", "0", "replies").Array().Values()
	require.NoError(t, err)
	assert.Empty(t, nested)
}
