package clock

import "time"

// Clock is the single source of "today" for the whole application. Expiration
// and birthday rules work on the studio's local calendar day, so every caller
// must go through the same clock instead of calling time.Now in place.
type Clock interface {
	Now() time.Time
	// Today returns the local calendar day as YYYY-MM-DD.
	Today() string
	// MonthDay returns the local calendar day as --MM-DD, the same shape
	// birthdays are stored in.
	MonthDay() string
}

type realClock struct {
	loc *time.Location
}

// New returns a Clock pinned to the given IANA timezone. Falls back to the
// server's local zone when the name does not resolve.
func New(timezone string) Clock {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.Local
	}
	return &realClock{loc: loc}
}

func (c *realClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *realClock) Today() string {
	return c.Now().Format("2006-01-02")
}

func (c *realClock) MonthDay() string {
	return c.Now().Format("--01-02")
}

// Fixed is a Clock stuck at a given instant, for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time   { return f.T }
func (f Fixed) Today() string    { return f.T.Format("2006-01-02") }
func (f Fixed) MonthDay() string { return f.T.Format("--01-02") }
