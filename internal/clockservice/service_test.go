package clockservice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/verseclock/internal/apperr"
	"github.com/starford/verseclock/internal/devotional"
	"github.com/starford/verseclock/internal/favorites"
	"github.com/starford/verseclock/internal/session"
	"github.com/starford/verseclock/internal/testutil"
	"github.com/starford/verseclock/internal/userstate"
	"github.com/starford/verseclock/internal/verses"
)

func testService(t *testing.T) (*Service, *testutil.Clock) {
	t.Helper()
	clock := &testutil.Clock{T: time.Date(2025, 3, 10, 3, 16, 0, 0, time.UTC)}
	kv := testutil.TestStore(t)
	gen, err := devotional.New()
	require.NoError(t, err)

	svc := NewService(
		verses.NewResolver(testutil.TestTable(t)),
		favorites.NewStore(kv, clock.Now, nil),
		userstate.NewStore(kv, clock.Now),
		gen,
		WithClock(clock.Now),
		WithLocation(time.UTC),
	)
	t.Cleanup(svc.Session().Close)
	return svc, clock
}

func TestCurrentVerse_Now(t *testing.T) {
	svc, _ := testService(t)

	v, err := svc.CurrentVerse(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "03:16", v.TimeKey)
	assert.Equal(t, "John 3:16", v.Reference)
	assert.Contains(t, v.Categories, "love")
	assert.False(t, v.Favorite)
}

func TestCurrentVerse_CategoryAndSessionFilter(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	v, err := svc.CurrentVerse(ctx, "04:10", "love")
	require.NoError(t, err)
	assert.Equal(t, "1 John 4:8", v.Reference)

	svc.SetFilter("peace")
	v, err = svc.CurrentVerse(ctx, "04:10", "")
	require.NoError(t, err)
	assert.Equal(t, "Philippians 4:6", v.Reference)

	v, err = svc.CurrentVerse(ctx, "04:10", session.AllCategories)
	require.NoError(t, err)
	assert.Equal(t, "1 John 4:8", v.Reference)
}

func TestCurrentVerse_InvalidTime(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.CurrentVerse(context.Background(), "25:00", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidTimeKey)
}

func TestVerseOfDay(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	v, err := svc.VerseOfDay(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "Hebrews 11:1", v.Reference)

	today, err := svc.VerseOfDay(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, v, today)

	_, err = svc.VerseOfDay(ctx, "10/03/2025")
	assert.ErrorIs(t, err, apperr.ErrInvalidDate)
}

func TestVerseOfDay_TodayFollowsUTCDate(t *testing.T) {
	// 22:00 on the 10th in New York, 02:00 on the 11th in UTC.
	clock := &testutil.Clock{T: time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC)}
	kv := testutil.TestStore(t)
	gen, err := devotional.New()
	require.NoError(t, err)
	svc := NewService(
		verses.NewResolver(testutil.TestTable(t)),
		favorites.NewStore(kv, clock.Now, nil),
		userstate.NewStore(kv, clock.Now),
		gen,
		WithClock(clock.Now),
		WithLocation(time.FixedZone("EDT", -4*60*60)),
	)
	t.Cleanup(svc.Session().Close)
	ctx := context.Background()

	today, err := svc.VerseOfDay(ctx, "")
	require.NoError(t, err)
	want, err := svc.VerseOfDay(ctx, "2025-03-11")
	require.NoError(t, err)
	assert.Equal(t, want, today)

	// The clock verse still follows local time.
	cur, err := svc.CurrentVerse(ctx, "", session.AllCategories)
	require.NoError(t, err)
	assert.Equal(t, "22:00", cur.TimeKey)

	d, err := svc.ShowVerseOfDay()
	require.NoError(t, err)
	assert.Equal(t, want.Text, d.Entry.Text)
}

func TestFavorites(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	_, err := svc.ToggleFavorite(ctx, "  ", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	v, err := svc.CurrentVerse(ctx, "", "")
	require.NoError(t, err)

	fav, err := svc.ToggleFavorite(ctx, v.Text, "")
	require.NoError(t, err)
	assert.True(t, fav)

	v, err = svc.CurrentVerse(ctx, "", "")
	require.NoError(t, err)
	assert.True(t, v.Favorite)

	list, err := svc.ListFavorites(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "John 3:16", list[0].Reference)

	require.NoError(t, svc.RemoveFavorite(ctx, v.Text))
	list, err = svc.ListFavorites(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestShowFavorite(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	text := "Romans 8:28 - We know that all things work together for good."

	_, err := svc.ShowFavorite(ctx, text)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.ToggleFavorite(ctx, text, "")
	require.NoError(t, err)
	d, err := svc.ShowFavorite(ctx, text)
	require.NoError(t, err)
	assert.Equal(t, session.KindFavorite, d.Kind)
	assert.Equal(t, session.KindFavorite, svc.Display().Kind)

	assert.Equal(t, session.KindCurrentTime, svc.ShowCurrent().Kind)
}

func TestShowSearchResult(t *testing.T) {
	svc, _ := testService(t)

	d, err := svc.ShowSearchResult("11:01")
	require.NoError(t, err)
	assert.Equal(t, session.KindSearchResult, d.Kind)
	assert.Equal(t, "Hebrews 11:1", d.Entry.Reference())

	_, err = svc.ShowSearchResult("11:02")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.ShowSearchResult("bad")
	assert.ErrorIs(t, err, apperr.ErrInvalidTimeKey)
}

func TestSearchAndCategories(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	hits := svc.Search(ctx, "shepherd")
	require.Len(t, hits, 1)
	assert.Equal(t, "23:01", hits[0].TimeKey)

	assert.NotNil(t, svc.Search(ctx, "x"))
	assert.Empty(t, svc.Search(ctx, "x"))

	assert.Equal(t, []string{"encouragement", "faith", "love", "peace", "wisdom"}, svc.Categories(ctx))
}

func TestDevotional_DefaultsToDisplayedVerse(t *testing.T) {
	svc, _ := testService(t)

	d := svc.Devotional(context.Background(), "")
	assert.Contains(t, d.Content, "John 3:16")
	assert.Contains(t, d.Content, "## Prayer Focus")
}

func TestThemeAndWelcome(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	// 03:16 is night: dark by default.
	th, err := svc.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, userstate.ThemeDark, th)

	th, err = svc.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, userstate.ThemeLight, th)

	_, err = svc.SetTheme(ctx, "blue")
	assert.ErrorIs(t, err, apperr.ErrInvalidTheme)

	w, err := svc.Welcome(ctx)
	require.NoError(t, err)
	assert.True(t, w.FirstVisit)
	assert.NotEmpty(t, w.Message)

	w, err = svc.Welcome(ctx)
	require.NoError(t, err)
	assert.False(t, w.FirstVisit)
}
