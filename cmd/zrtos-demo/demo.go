package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/evan-idocoding/zrtos"
	"github.com/evan-idocoding/zrtos/rt/event"
	"github.com/evan-idocoding/zrtos/rt/safego"
	"github.com/evan-idocoding/zrtos/rt/task"
	"github.com/evan-idocoding/zrtos/rt/tick"
)

// scenarioConfig holds the demo timings, all in ticks.
type scenarioConfig struct {
	ReportEvery tick.Span // task A reports the tick count this often
	WaitTimeout tick.Span // task B's event wait timeout
	SignalAfter tick.Span // main sets the event after this long
	StopAfter   tick.Span // main requests stop this long after setting the event
	Join        tick.Span // Delete timeout per task
}

func defaultScenarioConfig() scenarioConfig {
	return scenarioConfig{
		ReportEvery: 50,
		WaitTimeout: 300,
		SignalAfter: 200,
		StopAfter:   200,
		Join:        100,
	}
}

type scenario struct {
	rt  *zrtos.Runtime
	cfg scenarioConfig
	log *logrus.Entry
}

// reporter logs the tick count every ReportEvery ticks until stopped.
func (s *scenario) reporter(self *task.Self, _ any) {
	log := self.Logger()
	log.Info("start")
	for !self.ShouldStop() {
		log.WithField("tick", uint64(s.rt.Ticks())).Info("tick")
		s.rt.Delay(s.cfg.ReportEvery)
		self.Yield()
	}
	log.Info("stop")
}

// waiter waits on the event, resetting it each time it is signaled, until stopped.
func (s *scenario) waiter(self *task.Self, arg any) {
	ev := arg.(*event.Event)
	log := self.Logger()

	// A stop request also ends the current wait, so a join does not have to outlast it.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	safego.Go(func() {
		select {
		case <-self.StopRequested():
			cancel()
		case <-ctx.Done():
		}
	}, safego.WithName("B-stop-watch"), safego.WithLogger(log))

	log.Info("start (wait event)")
	for !self.ShouldStop() {
		ok, err := ev.WaitContext(ctx, s.cfg.WaitTimeout)
		switch {
		case ok:
			log.Info("event signaled")
			ev.Reset()
		case err != nil:
			// stop requested mid-wait
		default:
			log.Info("timeout")
		}
		self.Yield()
	}
	log.Info("stop")
}

// run executes the demo against a started runtime. Canceling ctx skips to the stop phase.
func (s *scenario) run(ctx context.Context) error {
	ev := s.rt.NewEvent()

	a, err := s.rt.NewTask("A", s.reporter, nil)
	if err != nil {
		return fmt.Errorf("create task A: %w", err)
	}
	b, err := s.rt.NewTask("B", s.waiter, ev)
	if err != nil {
		a.RequestStop()
		_ = a.Delete(s.cfg.Join)
		ev.Destroy()
		return fmt.Errorf("create task B: %w", err)
	}
	tasks := []*task.Task{a, b}
	for _, t := range tasks {
		if err := t.Start(); err != nil {
			return fmt.Errorf("start task %s: %w", t.Name(), err)
		}
	}

	if err := s.rt.DelayContext(ctx, s.cfg.SignalAfter); err == nil {
		s.log.Info("set event")
		ev.Set()
		_ = s.rt.DelayContext(ctx, s.cfg.StopAfter)
	}

	s.log.Info("stop tasks")
	for _, t := range tasks {
		t.RequestStop()
	}

	var g errgroup.Group
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			if err := t.Delete(s.cfg.Join); err != nil {
				if errors.Is(err, task.ErrJoinTimeout) {
					s.log.WithField("task", t.Name()).Warn("task did not exit in time; leaving it running")
				}
				return fmt.Errorf("delete task %s: %w", t.Name(), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// B may still be waiting on ev; leave it allocated.
		return err
	}
	ev.Destroy()
	return nil
}
