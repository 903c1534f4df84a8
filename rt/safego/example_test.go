package safego_test

import (
	"fmt"
	"sync"

	"github.com/evan-idocoding/zrtos/rt/safego"
)

func ExampleGo_withWaitGroup() {
	var wg sync.WaitGroup
	wg.Add(1)

	safego.Go(func() {
		// ... do background work ...
	}, safego.WithName("clock"),
		safego.WithFinally(wg.Done),
		safego.WithPanicHandler(func(safego.PanicInfo) {}),
	)

	wg.Wait()
	// Output:
}

func ExampleRun_repanicAfterReport() {
	defer func() {
		if p := recover(); p != nil {
			fmt.Printf("panicked: %v\n", p)
		}
	}()

	safego.Run(func() {
		panic("boom")
	}, safego.WithPanicPolicy(safego.RepanicAfterReport),
		safego.WithPanicHandler(func(safego.PanicInfo) {
			fmt.Println("reported")
		}),
	)

	// Output:
	// reported
	// panicked: boom
}

func ExampleRun_reportsPanicked() {
	panicked := safego.Run(func() {
		panic("boom")
	}, safego.WithName("task"),
		safego.WithPanicHandler(func(info safego.PanicInfo) {
			fmt.Printf("name=%s value=%v\n", info.Name, info.Value)
		}),
	)
	fmt.Println("panicked:", panicked)

	// Output:
	// name=task value=boom
	// panicked: true
}
