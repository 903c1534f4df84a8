package event_test

import (
	"fmt"
	"time"

	"github.com/evan-idocoding/zrtos/rt/event"
)

func ExampleEvent() {
	ev := event.New(event.WithPeriod(time.Millisecond))

	done := make(chan bool)
	go func() { done <- ev.Wait(1000) }()

	ev.Set()
	fmt.Println("signaled:", <-done)

	ev.Reset()
	fmt.Println("after reset:", ev.Wait(1))

	// Output:
	// signaled: true
	// after reset: false
}
