package verses

import (
	"fmt"
	"regexp"
	"time"

	"github.com/starford/verseclock/internal/apperr"
)

var timeKeyRe = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// TimeKey identifies one minute of the day, rendered as zero-padded "HH:MM".
type TimeKey struct {
	hour   int
	minute int
}

// ParseTimeKey parses a 24-hour "HH:MM" string.
func ParseTimeKey(s string) (TimeKey, error) {
	if !timeKeyRe.MatchString(s) {
		return TimeKey{}, fmt.Errorf("%w: %q", apperr.ErrInvalidTimeKey, s)
	}
	return TimeKey{
		hour:   int(s[0]-'0')*10 + int(s[1]-'0'),
		minute: int(s[3]-'0')*10 + int(s[4]-'0'),
	}, nil
}

// MustTimeKey is like ParseTimeKey but panics on malformed input.
func MustTimeKey(s string) TimeKey {
	k, err := ParseTimeKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// KeyAt returns the time key for the local hours and minutes of t.
func KeyAt(t time.Time) TimeKey {
	return TimeKey{hour: t.Hour(), minute: t.Minute()}
}

// Minutes returns the minute of the day, 0..1439.
func (k TimeKey) Minutes() int {
	return k.hour*60 + k.minute
}

// String formats the key as "HH:MM".
func (k TimeKey) String() string {
	return fmt.Sprintf("%02d:%02d", k.hour, k.minute)
}

// distance is the linear minute distance between two keys. It does not wrap
// around midnight: 23:55 and 00:05 are 1430 minutes apart.
func distance(a, b TimeKey) int {
	d := a.Minutes() - b.Minutes()
	if d < 0 {
		return -d
	}
	return d
}
