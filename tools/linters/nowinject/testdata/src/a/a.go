package a

import (
	"time"

	clk "time"
)

func bad() {
	_ = time.Now() // want `time.Now\(\) reads the wall clock; inject the current time instead`
}

func badUTC() {
	_ = time.Now().UTC() // want `time.Now\(\) reads the wall clock; inject the current time instead`
}

func badSince(start time.Time) time.Duration {
	return time.Since(start) // want `time.Since\(\) reads the wall clock; inject the current time instead`
}

func badUntil(deadline time.Time) time.Duration {
	return time.Until(deadline) // want `time.Until\(\) reads the wall clock; inject the current time instead`
}

func renamedImport() {
	_ = clk.Now() // want `time.Now\(\) reads the wall clock; inject the current time instead`
}

func good(now time.Time) {
	_ = now.UTC()
	_ = now.Sub(now)
	_ = time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
}

func goodReference() func() time.Time {
	return time.Now
}

type fakeTime struct{}

func (fakeTime) Now() int { return 0 }

func shadowed() {
	var time fakeTime
	_ = time.Now()
}

func nolintGeneral() {
	//nolint
	_ = time.Now()
}

func nolintSpecific() {
	_ = time.Now() //nolint:nowinject
}

func nolintList() {
	_ = time.Now() //nolint:errcheck,nowinject
}

func nolintOtherLinter() {
	_ = time.Now() //nolint:otherlinter // want `time.Now\(\) reads the wall clock; inject the current time instead`
}
