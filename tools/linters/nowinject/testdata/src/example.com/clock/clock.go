package clock

import "time"

func System() time.Time {
	return time.Now()
}
