package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/media-ranker/backend/internal/models"
	"github.com/emilythestrangee/media-ranker/backend/internal/testutil"
)

func TestWorkRepositoryFindByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewWorkRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "alice")
	work := testutil.CreateWork(t, db, owner, models.CategoryBook, "Dune", 0)

	found, err := repo.FindByID(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", found.Title)
	require.NotNil(t, found.User)
	assert.Equal(t, "alice", found.User.Username)

	_, err = repo.FindByID(ctx, work.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkRepositoryRankings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewWorkRepository(db)
	ctx := context.Background()

	best, err := repo.Best(ctx)
	require.NoError(t, err)
	assert.Nil(t, best, "no works means no best work")

	owner := testutil.CreateUser(t, db, "alice")
	testutil.CreateWork(t, db, owner, models.CategoryAlbum, "Low", 1)
	testutil.CreateWork(t, db, owner, models.CategoryAlbum, "High", 7)
	testutil.CreateWork(t, db, owner, models.CategoryAlbum, "Mid", 3)
	testutil.CreateWork(t, db, owner, models.CategoryMovie, "Alien", 9)

	albums, err := repo.TopByCategory(ctx, models.CategoryAlbum, 2)
	require.NoError(t, err)
	require.Len(t, albums, 2)
	assert.Equal(t, "High", albums[0].Title)
	assert.Equal(t, "Mid", albums[1].Title)

	books, err := repo.TopByCategory(ctx, models.CategoryBook, 10)
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.NotNil(t, books)

	best, err = repo.Best(ctx)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "Alien", best.Title)

	grouped, err := repo.GroupByCategory(ctx)
	require.NoError(t, err)
	assert.Len(t, grouped, 3)
	assert.Len(t, grouped[models.CategoryAlbum], 3)
	assert.Equal(t, "High", grouped[models.CategoryAlbum][0].Title)
	assert.Empty(t, grouped[models.CategoryBook])
	assert.Len(t, grouped[models.CategoryMovie], 1)
}

func TestWorkRepositoryUpdateKeepsVoteCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewWorkRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "alice")
	work := testutil.CreateWork(t, db, owner, models.CategoryBook, "Dune", 4)

	work.Title = "Dune Messiah"
	work.VoteCount = 0
	require.NoError(t, repo.Update(ctx, work))

	found, err := repo.FindByID(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", found.Title)
	assert.Equal(t, 4, found.VoteCount)
}

func TestWorkRepositoryDeleteRemovesVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	works := NewWorkRepository(db)
	votes := NewVoteRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "alice")
	voter := testutil.CreateUser(t, db, "bob")
	work := testutil.CreateWork(t, db, owner, models.CategoryMovie, "Alien", 0)
	other := testutil.CreateWork(t, db, owner, models.CategoryMovie, "Aliens", 0)
	testutil.CreateVote(t, db, voter, work)
	testutil.CreateVote(t, db, voter, other)

	require.NoError(t, works.Delete(ctx, work.ID))

	_, err := works.FindByID(ctx, work.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := votes.CountByWork(ctx, work.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = votes.CountByWork(ctx, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	assert.ErrorIs(t, works.Delete(ctx, work.ID), ErrNotFound)
}

func TestWorkRepositoryTitleTaken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewWorkRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "alice")
	work := testutil.CreateWork(t, db, owner, models.CategoryBook, "Dune", 0)

	taken, err := repo.TitleTaken(ctx, models.CategoryBook, "dune", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.TitleTaken(ctx, models.CategoryBook, "Dune", work.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a work does not collide with itself")

	taken, err = repo.TitleTaken(ctx, models.CategoryMovie, "Dune", 0)
	require.NoError(t, err)
	assert.False(t, taken, "titles are unique per category only")
}

func TestVoteRepositoryCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	works := NewWorkRepository(db)
	votes := NewVoteRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "alice")
	voter := testutil.CreateUser(t, db, "bob")
	work := testutil.CreateWork(t, db, owner, models.CategoryAlbum, "Blue", 0)

	vote := &models.Vote{UserID: voter.ID, WorkID: work.ID}
	require.NoError(t, votes.Create(ctx, vote))
	assert.NotZero(t, vote.ID)

	found, err := works.FindByID(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.VoteCount)

	err = votes.Create(ctx, &models.Vote{UserID: voter.ID, WorkID: work.ID})
	assert.ErrorIs(t, err, ErrDuplicateVote)

	found, err = works.FindByID(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.VoteCount, "a rejected vote leaves the count alone")

	err = votes.Create(ctx, &models.Vote{UserID: voter.ID, WorkID: work.ID + 100})
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := votes.CountByWork(ctx, work.ID+100)
	require.NoError(t, err)
	assert.Zero(t, count, "the vote for a missing work is rolled back")
}

func TestVoteRepositoryOrdering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	votes := NewVoteRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "alice")
	first := testutil.CreateUser(t, db, "bob")
	second := testutil.CreateUser(t, db, "carol")
	work := testutil.CreateWork(t, db, owner, models.CategoryAlbum, "Blue", 0)
	other := testutil.CreateWork(t, db, owner, models.CategoryBook, "Emma", 0)

	older := testutil.CreateVote(t, db, first, work)
	require.NoError(t, db.Model(older).UpdateColumn("created_at", time.Now().UTC().Add(-time.Hour)).Error)
	testutil.CreateVote(t, db, second, work)
	testutil.CreateVote(t, db, first, other)

	list, err := votes.ListByWork(ctx, work.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "carol", list[0].User.Username)
	assert.Equal(t, "bob", list[1].User.Username)

	mine, err := votes.ListByUser(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Emma", mine[0].Work.Title)
	assert.Equal(t, "Blue", mine[1].Work.Title)
}

func TestUserRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	alice := &models.User{Username: "alice", Password: "hash"}
	require.NoError(t, users.Create(ctx, alice))
	assert.ErrorIs(t, users.Create(ctx, &models.User{Username: "alice", Password: "x"}), ErrDuplicateUsername)

	found, err := users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	_, err = users.FindByID(ctx, alice.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)

	bob := testutil.CreateUser(t, db, "bob")
	work := testutil.CreateWork(t, db, alice, models.CategoryBook, "Emma", 0)
	testutil.CreateVote(t, db, bob, work)

	summaries, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "alice", summaries[0].Username)
	assert.Zero(t, summaries[0].VoteCount)
	assert.Equal(t, "bob", summaries[1].Username)
	assert.EqualValues(t, 1, summaries[1].VoteCount)
}

func TestWorkRepositoryTitleIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewWorkRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "alice")
	testutil.CreateWork(t, db, owner, models.CategoryBook, "Dune", 0)

	err := repo.Create(ctx, &models.Work{Category: models.CategoryBook, Title: "DUNE", UserID: owner.ID})
	assert.ErrorIs(t, err, ErrDuplicateTitle)

	movie := &models.Work{Category: models.CategoryMovie, Title: "Dune", UserID: owner.ID}
	require.NoError(t, repo.Create(ctx, movie), "titles are unique per category only")

	movie.Category = models.CategoryBook
	assert.ErrorIs(t, repo.Update(ctx, movie), ErrDuplicateTitle)
}
