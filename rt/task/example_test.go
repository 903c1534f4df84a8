package task_test

import (
	"fmt"

	"github.com/evan-idocoding/zrtos/rt/task"
	"github.com/evan-idocoding/zrtos/rt/tick"
)

func ExampleNew() {
	out := make(chan string, 1)
	t, _ := task.New("hello", func(self *task.Self, arg any) {
		out <- fmt.Sprintf("%s says %v", self.Name(), arg)
	}, "hi")

	_ = t.Start()
	fmt.Println(<-out)
	<-t.Done()
	fmt.Println(t.State(), t.Delete(tick.Infinite))

	// Output:
	// hello says hi
	// stopped <nil>
}

func ExampleTask_RequestStop() {
	t, _ := task.New("worker", func(self *task.Self, _ any) {
		for !self.ShouldStop() {
			self.Yield()
		}
	}, nil)

	_ = t.Start()
	t.RequestStop()
	fmt.Println(t.Delete(tick.Infinite))
	fmt.Println(t.Delete(tick.Infinite))

	// Output:
	// <nil>
	// task: invalid state transition: deleted
}

func ExampleTask_RequestStop_beforeStart() {
	firstPoll := make(chan bool, 1)
	t, _ := task.New("late", func(self *task.Self, _ any) {
		firstPoll <- self.ShouldStop()
	}, nil)

	t.RequestStop()
	fmt.Println(t.State(), t.Start())
	fmt.Println("first poll:", <-firstPoll)
	fmt.Println(t.Delete(tick.Infinite))

	// Output:
	// new <nil>
	// first poll: true
	// <nil>
}

func ExampleTask_Delete_neverStarted() {
	ran := false
	t, _ := task.New("never", func(*task.Self, any) { ran = true }, nil)

	t.RequestStop()
	fmt.Println(t.Delete(tick.Infinite))
	st := t.Status()
	fmt.Println(st.State, st.Retired, ran)

	// Output:
	// <nil>
	// stopped true false
}
