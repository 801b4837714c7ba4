package reward_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/styx/internal/application/reward"
	userapp "github.com/lllypuk/styx/internal/application/user"
	"github.com/lllypuk/styx/internal/domain/post"
	"github.com/lllypuk/styx/internal/domain/user"
	"github.com/lllypuk/styx/internal/domain/uuid"
	"github.com/lllypuk/styx/tests/mocks"
)

const subject = "auth0|poster"

var noon = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	users *mocks.UserRepository
	posts *mocks.PostRepository
	uc    *reward.DailyRewardUseCase
}

func newFixture(t *testing.T, coins int) fixture {
	t.Helper()
	users := mocks.NewUserRepository()
	users.Add(user.Reconstruct(uuid.NewUUID(), subject, "p@example.com", "Poster", "", "", "",
		coins, nil, noon.AddDate(0, -1, 0), 1))
	posts := mocks.NewPostRepository()
	uc := reward.NewDailyRewardUseCase(posts, userapp.NewUpdater(users),
		reward.WithClock(func() time.Time { return noon }))
	return fixture{users: users, posts: posts, uc: uc}
}

func (f fixture) addPost(t *testing.T, owner string, at time.Time) {
	t.Helper()
	p, err := post.NewPost(post.NewPostParams{
		PostType: "running", OwnerSubjectID: owner, AuthorName: "P",
		AuthorEmail: "p@example.com", Caption: "c",
	}, at)
	require.NoError(t, err)
	f.posts.Add(p)
}

func TestDailyReward_ExactlyOnePostGrantsRepeatedly(t *testing.T) {
	f := newFixture(t, 100)
	f.addPost(t, subject, noon.Add(-time.Hour))

	first, err := f.uc.Execute(context.Background(), reward.ClaimDailyRewardCommand{SubjectID: subject})
	require.NoError(t, err)
	assert.True(t, first.Rewarded)
	assert.Equal(t, 600, first.TotalCoins)

	// the literal rule grants again while the count stays at one
	second, err := f.uc.Execute(context.Background(), reward.ClaimDailyRewardCommand{SubjectID: subject})
	require.NoError(t, err)
	assert.True(t, second.Rewarded)
	assert.Equal(t, 1100, second.TotalCoins)
	assert.Equal(t, 1100, f.users.Get(subject).Coins())
}

func TestDailyReward_CountsOtherThanOne(t *testing.T) {
	tests := []struct {
		name  string
		posts []time.Time
	}{
		{"no posts", nil},
		{"only yesterday", []time.Time{noon.Add(-13 * time.Hour)}},
		{"two today", []time.Time{noon.Add(-time.Hour), noon.Add(-2 * time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 100)
			for _, at := range tt.posts {
				f.addPost(t, subject, at)
			}

			result, err := f.uc.Execute(context.Background(), reward.ClaimDailyRewardCommand{SubjectID: subject})

			require.NoError(t, err)
			assert.False(t, result.Rewarded)
			assert.Equal(t, 100, f.users.Get(subject).Coins())
			assert.Zero(t, f.users.ReplaceCalls)
		})
	}
}

func TestDailyReward_MidnightBoundaryIsInclusive(t *testing.T) {
	f := newFixture(t, 0)
	f.addPost(t, subject, reward.StartOfDay(noon))
	f.addPost(t, subject, reward.StartOfDay(noon).Add(-time.Nanosecond))
	f.addPost(t, "auth0|someone-else", noon)

	result, err := f.uc.Execute(context.Background(), reward.ClaimDailyRewardCommand{SubjectID: subject})

	require.NoError(t, err)
	assert.True(t, result.Rewarded)
	assert.Equal(t, int64(1), result.PostsToday)
}

func TestDailyReward_UserMissing(t *testing.T) {
	f := newFixture(t, 0)
	f.addPost(t, "auth0|unregistered", noon)

	_, err := f.uc.Execute(context.Background(), reward.ClaimDailyRewardCommand{SubjectID: "auth0|unregistered"})

	require.ErrorIs(t, err, userapp.ErrUserNotFound)
}

func TestDailyReward_CountError(t *testing.T) {
	f := newFixture(t, 0)
	f.posts.FindErr = errors.New("store down")

	_, err := f.uc.Execute(context.Background(), reward.ClaimDailyRewardCommand{SubjectID: subject})

	require.Error(t, err)
}

func TestStartOfDay(t *testing.T) {
	local := time.Date(2024, 6, 10, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))

	assert.Equal(t, time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC), reward.StartOfDay(local))
}
