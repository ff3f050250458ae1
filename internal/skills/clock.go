package skills

import (
	"context"
	"time"

	"zara/internal/router"
)

type Clock struct {
	Now func() time.Time
}

func (c Clock) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c Clock) Handle(_ context.Context, req router.Request) (string, error) {
	now := c.now()
	switch req.Category {
	case router.CategoryDate:
		return "Today's date is " + now.Format("02 January, 2006"), nil
	case router.CategoryDay:
		return "Today is " + now.Format("Monday"), nil
	default:
		return "The current time is " + now.Format("03:04 PM"), nil
	}
}
