package repository

import (
	"context"
	"testing"

	"github.com/SundayYogurt/channel_service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchHistoryRepository_ListInWatchOrder(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := NewWatchHistoryRepository(db)

	viewer := testutil.SeedUser(t, db, "viewer")
	creator := testutil.SeedUser(t, db, "creator")
	first := testutil.SeedVideo(t, db, creator.ID, "first")
	second := testutil.SeedVideo(t, db, viewer.ID, "second")

	require.NoError(t, repo.Append(ctx, viewer.ID, second.ID))
	require.NoError(t, repo.Append(ctx, viewer.ID, first.ID))

	items, err := repo.ListByUserID(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, "viewer", items[0].Owner.Username)
	assert.Equal(t, first.ID, items[1].ID)
	assert.Equal(t, "first", items[1].Title)
	assert.Equal(t, 61.5, items[1].Duration)
	assert.Equal(t, "creator", items[1].Owner.Username)
	assert.Equal(t, "creator", items[1].Owner.FullName)
	assert.Equal(t, creator.Avatar, items[1].Owner.Avatar)
}

func TestWatchHistoryRepository_Empty(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewWatchHistoryRepository(db)
	u := testutil.SeedUser(t, db, "fresh")

	items, err := repo.ListByUserID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestWatchHistoryRepository_VideoExists(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := NewWatchHistoryRepository(db)
	u := testutil.SeedUser(t, db, "owner")
	v := testutil.SeedVideo(t, db, u.ID, "clip")

	ok, err := repo.VideoExists(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.VideoExists(ctx, v.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)
}
