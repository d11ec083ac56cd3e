package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/verseclock/internal/testutil"
	"github.com/starford/verseclock/internal/verses"
)

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	was := !f.stopped
	f.stopped = true
	return was
}

type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (f *fakeTimers) after(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{d: d, fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// fire runs the timer callback even if stopped, as a real AfterFunc can race
// with Stop.
func (f *fakeTimers) fire(i int) {
	f.mu.Lock()
	fn := f.timers[i].fn
	f.mu.Unlock()
	fn()
}

func (f *fakeTimers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

func newTestSession(t *testing.T) (*Session, *testutil.Clock, *fakeTimers) {
	t.Helper()
	tbl, err := verses.NewTable(
		verses.Item{Key: "08:00", Text: "Psalm 5:3 - In the morning you hear my voice.", Categories: []string{"faith"}},
		verses.Item{Key: "08:20", Text: "John 3:16 - For God so loved the world.", Categories: []string{"love"}},
		verses.Item{Key: "12:00", Text: "Philippians 4:7 - The peace of God.", Categories: []string{"peace"}},
	)
	require.NoError(t, err)

	clock := &testutil.Clock{T: time.Date(2025, 3, 10, 8, 1, 0, 0, time.UTC)}
	timers := &fakeTimers{}
	s := New(verses.NewResolver(tbl), WithClock(clock.Now), WithAfterFunc(timers.after))
	return s, clock, timers
}

func TestNew_ShowsCurrentVerse(t *testing.T) {
	s, _, _ := newTestSession(t)

	d := s.Display()
	assert.Equal(t, KindCurrentTime, d.Kind)
	assert.Equal(t, "08:01", d.TimeKey)
	assert.Equal(t, "Psalm 5:3 - In the morning you hear my voice.", d.Entry.Text)
	assert.Nil(t, d.RevertAt)
}

func TestSetFilter(t *testing.T) {
	s, _, _ := newTestSession(t)

	d := s.SetFilter("love")
	assert.Equal(t, "love", s.Filter())
	assert.Equal(t, "John 3:16 - For God so loved the world.", d.Entry.Text)

	// Nothing in the window: falls back to the unfiltered verse.
	d = s.SetFilter("peace")
	assert.Equal(t, "Psalm 5:3 - In the morning you hear my voice.", d.Entry.Text)

	s.SetFilter(AllCategories)
	assert.Equal(t, "", s.Filter())
}

func TestShowVerseOfDay_RevertsAfterDelay(t *testing.T) {
	s, clock, timers := newTestSession(t)
	want, err := verses.NewResolver(s.resolver.Table()).VerseOfDayAt(clock.Now())
	require.NoError(t, err)

	d, err := s.ShowVerseOfDay()
	require.NoError(t, err)
	assert.Equal(t, KindVerseOfDay, d.Kind)
	assert.Equal(t, want, d.Entry)
	require.NotNil(t, d.RevertAt)
	assert.Equal(t, clock.Now().Add(10*time.Second), *d.RevertAt)

	require.Len(t, timers.timers, 1)
	assert.Equal(t, 10*time.Second, timers.timers[0].d)

	timers.fire(0)
	assert.Equal(t, KindCurrentTime, s.Display().Kind)
}

func TestShowFavorite_NewDisplayCancelsEarlierRevert(t *testing.T) {
	s, _, timers := newTestSession(t)

	s.ShowFavorite("Romans 8:28 - All things work together for good.")
	s.ShowSearchResult(verses.Hit{TimeKey: "12:00", Entry: verses.Entry{Text: "Philippians 4:7 - The peace of God."}})

	require.Len(t, timers.timers, 2)
	assert.True(t, timers.timers[0].stopped)
	assert.Equal(t, 30*time.Second, timers.timers[1].d)

	// The stale revert must not clobber the search result.
	timers.fire(0)
	d := s.Display()
	assert.Equal(t, KindSearchResult, d.Kind)
	assert.Equal(t, "12:00", d.TimeKey)

	timers.fire(1)
	assert.Equal(t, KindCurrentTime, s.Display().Kind)
}

func TestReturnToCurrent_CancelsRevert(t *testing.T) {
	s, clock, timers := newTestSession(t)

	s.ShowFavorite("Romans 8:28 - All things work together for good.")
	clock.Advance(19 * time.Minute)
	d := s.ReturnToCurrent()
	assert.Equal(t, KindCurrentTime, d.Kind)
	assert.Equal(t, "08:20", d.TimeKey)
	assert.True(t, timers.timers[0].stopped)

	var notified int
	s.Subscribe(func(Displayed) { notified++ })
	timers.fire(0)
	assert.Equal(t, 0, notified)
}

func TestRefresh_LeavesTemporaryDisplayAlone(t *testing.T) {
	s, clock, _ := newTestSession(t)

	s.ShowFavorite("Romans 8:28 - All things work together for good.")
	clock.Advance(19 * time.Minute)
	d := s.Refresh()
	assert.Equal(t, KindFavorite, d.Kind)
}

func TestRefresh_NotifiesOnlyOnChange(t *testing.T) {
	s, clock, _ := newTestSession(t)

	var got []Displayed
	s.Subscribe(func(d Displayed) { got = append(got, d) })

	s.Refresh()
	assert.Empty(t, got)

	clock.Advance(time.Minute)
	s.Refresh()
	require.Len(t, got, 1)
	assert.Equal(t, "08:02", got[0].TimeKey)
}

func TestRun_StopsOnCancel(t *testing.T) {
	tbl := testutil.TestTable(t)
	s := New(verses.NewResolver(tbl))

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Run(ctx, 5*time.Millisecond)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	wg.Wait()
}

func TestObserversSeeChangesInOrder(t *testing.T) {
	s, _, timers := newTestSession(t)

	var (
		mu   sync.Mutex
		last Displayed
		seen int
	)
	s.Subscribe(func(d Displayed) {
		mu.Lock()
		last = d
		seen++
		mu.Unlock()
	})

	hit := verses.Hit{TimeKey: "12:00", Entry: verses.Entry{Text: "Philippians 4:7 - The peace of God."}}
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(3)
		go func() {
			defer wg.Done()
			s.ShowFavorite("John 3:16 - For God so loved the world.")
		}()
		go func() {
			defer wg.Done()
			s.ShowSearchResult(hit)
		}()
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				s.ReturnToCurrent()
				return
			}
			if n := timers.count(); n > 0 {
				timers.fire(n - 1)
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotZero(t, seen)
	assert.Equal(t, s.Display(), last)
}
