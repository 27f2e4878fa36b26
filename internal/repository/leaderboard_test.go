package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/rocketscienceinc/tictactoe-infinite/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/entity"
	"github.com/rocketscienceinc/tictactoe-infinite/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLeaderboard(t *testing.T) {
	testLeaderboard(t, func(t *testing.T) (context.Context, LeaderboardRepository) {
		return context.Background(), NewMemoryLeaderboard()
	})
}

func TestSQLiteLeaderboard(t *testing.T) {
	testLeaderboard(t, func(t *testing.T) (context.Context, LeaderboardRepository) {
		ctx, db := suite.NewSQLite(t)
		return ctx, NewSQLiteLeaderboard(db.Connection)
	})
}

func TestRedisLeaderboard(t *testing.T) {
	if testing.Short() {
		t.Skip("redis leaderboard needs docker")
	}

	testLeaderboard(t, func(t *testing.T) (context.Context, LeaderboardRepository) {
		ctx, st := suite.New(t)
		return ctx, NewRedisLeaderboard(st.Storage)
	})
}

func testLeaderboard(t *testing.T, setup func(t *testing.T) (context.Context, LeaderboardRepository)) {
	t.Helper()

	t.Run("RecordResult_Accumulates", func(t *testing.T) {
		ctx, leaderboard := setup(t)

		// Given: a few finished games for alice
		for _, result := range []entity.PlayerResult{entity.PlayerWin, entity.PlayerWin, entity.PlayerLoss, entity.PlayerDraw} {
			require.NoError(t, leaderboard.RecordResult(ctx, "alice", result))
		}

		// When: reading her entry
		entry, err := leaderboard.GetEntry(ctx, "alice")

		// Then: every counter matches
		require.NoError(t, err)
		assert.Equal(t, &entity.LeaderboardEntry{Name: "alice", Wins: 2, Losses: 1, Draws: 1}, entry)
	})

	t.Run("GetEntry_NotFound", func(t *testing.T) {
		ctx, leaderboard := setup(t)

		// When: GetEntry is called for an unknown name
		entry, err := leaderboard.GetEntry(ctx, "nobody")

		// Then: ErrEntryNotFound is returned
		require.ErrorIs(t, err, apperror.ErrEntryNotFound)
		assert.Nil(t, entry)
	})

	t.Run("RecordResult_RejectsUnknownResult", func(t *testing.T) {
		ctx, leaderboard := setup(t)

		err := leaderboard.RecordResult(ctx, "alice", entity.PlayerResult("forfeit"))

		require.Error(t, err)
		_, err = leaderboard.GetEntry(ctx, "alice")
		require.ErrorIs(t, err, apperror.ErrEntryNotFound)
	})

	t.Run("List_ReturnsEveryPlayer", func(t *testing.T) {
		ctx, leaderboard := setup(t)

		// Given: empty leaderboard
		entries, err := leaderboard.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)

		// When: two players get results
		require.NoError(t, leaderboard.RecordResult(ctx, "alice", entity.PlayerWin))
		require.NoError(t, leaderboard.RecordResult(ctx, "bob", entity.PlayerLoss))

		// Then: both are listed
		entries, err = leaderboard.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []*entity.LeaderboardEntry{
			{Name: "alice", Wins: 1},
			{Name: "bob", Losses: 1},
		}, entries)
	})

	t.Run("RecordResult_ConcurrentUpdatesAreNotLost", func(t *testing.T) {
		ctx, leaderboard := setup(t)

		const updates = 50

		// When: many goroutines record wins for the same player
		var wg sync.WaitGroup
		for i := 0; i < updates; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, leaderboard.RecordResult(ctx, "carol", entity.PlayerWin))
			}()
		}
		wg.Wait()

		// Then: every update is counted
		entry, err := leaderboard.GetEntry(ctx, "carol")
		require.NoError(t, err)
		assert.Equal(t, int64(updates), entry.Wins)
	})
}
