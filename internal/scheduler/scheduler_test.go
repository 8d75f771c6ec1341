package scheduler_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ringball/internal/scheduler"
	"github.com/san-kum/ringball/internal/sim"
)

var _ = Describe("Scheduler", func() {
	var (
		queue *scheduler.Queue
		clock *sim.Clock
		now   time.Time
		ticks int
		s     *scheduler.Scheduler
	)

	advance := func(d time.Duration) int {
		now = now.Add(d)
		return queue.Flush(now)
	}

	BeforeEach(func() {
		queue = scheduler.NewQueue()
		clock = &sim.Clock{}
		now = time.Unix(1_700_000_000, 0)
		clock.Restart(now)
		ticks = 0
		s = scheduler.New(queue, clock, func(time.Time) { ticks++ },
			scheduler.WithNow(func() time.Time { return now }))
	})

	It("starts stopped", func() {
		Expect(s.State()).To(Equal(scheduler.Stopped))
		Expect(s.IsRunning()).To(BeFalse())
		Expect(queue.Pending()).To(Equal(0))
	})

	It("runs one tick per frame while running", func() {
		s.Start()
		Expect(s.IsRunning()).To(BeTrue())

		for i := 0; i < 10; i++ {
			advance(16 * time.Millisecond)
		}
		Expect(ticks).To(Equal(10))
		Expect(queue.Pending()).To(Equal(1))
		Expect(clock.Elapsed()).To(Equal(160 * time.Millisecond))
	})

	It("ignores a second Start", func() {
		s.Start()
		s.Start()
		Expect(queue.Pending()).To(Equal(1))
		advance(time.Millisecond)
		Expect(ticks).To(Equal(1))
	})

	It("cancels the pending frame on Stop and is idempotent", func() {
		s.Start()
		s.Stop()
		s.Stop()

		Expect(queue.Pending()).To(Equal(0))
		Expect(advance(time.Second)).To(Equal(0))
		Expect(ticks).To(BeZero())
		Expect(s.State()).To(Equal(scheduler.Stopped))
	})

	It("freezes elapsed time while stopped", func() {
		s.Start()
		advance(time.Second)
		Expect(clock.Elapsed()).To(Equal(time.Second))

		s.Stop()
		advance(5 * time.Second)
		Expect(clock.Elapsed()).To(Equal(time.Second))

		s.Start()
		advance(500 * time.Millisecond)
		Expect(clock.Elapsed()).To(Equal(1500 * time.Millisecond))
	})

	It("treats frames from an old token as no-ops", func() {
		var stale func(time.Time)
		src := &capturingSource{}
		s = scheduler.New(src, clock, func(time.Time) { ticks++ },
			scheduler.WithNow(func() time.Time { return now }))

		s.Start()
		stale = src.last
		s.Stop()
		s.Start()

		stale(now.Add(time.Second))
		Expect(ticks).To(BeZero())

		src.last(now.Add(time.Second))
		Expect(ticks).To(Equal(1))
	})

	It("does not reschedule when the tick itself stops the scheduler", func() {
		s = scheduler.New(queue, clock, func(time.Time) {
			ticks++
			s.Stop()
		}, scheduler.WithNow(func() time.Time { return now }))

		s.Start()
		advance(time.Millisecond)
		advance(time.Millisecond)
		Expect(ticks).To(Equal(1))
		Expect(queue.Pending()).To(Equal(0))
	})

	Describe("drag pause", func() {
		It("reports Paused and resumes with preserved elapsed time", func() {
			s.Start()
			advance(2 * time.Second)

			s.Pause()
			Expect(s.State()).To(Equal(scheduler.Paused))
			Expect(s.IsRunning()).To(BeFalse())
			advance(3 * time.Second)
			Expect(ticks).To(Equal(1))

			s.Resume()
			Expect(s.State()).To(Equal(scheduler.Running))
			advance(time.Second)
			Expect(clock.Elapsed()).To(Equal(3 * time.Second))
		})

		It("resumes even when the scheduler was stopped before the drag", func() {
			s.Pause()
			s.Resume()
			Expect(s.IsRunning()).To(BeTrue())
		})
	})

	DescribeTable("State strings",
		func(st scheduler.State, want string) {
			Expect(st.String()).To(Equal(want))
		},
		Entry("stopped", scheduler.Stopped, "stopped"),
		Entry("running", scheduler.Running, "running"),
		Entry("paused", scheduler.Paused, "paused"),
	)
})

// capturingSource keeps only the most recent callback so tests can fire a
// stale one by hand.
type capturingSource struct {
	last func(time.Time)
	id   scheduler.FrameID
}

func (c *capturingSource) RequestFrame(fn func(time.Time)) scheduler.FrameID {
	c.id++
	c.last = fn
	return c.id
}

func (c *capturingSource) CancelFrame(scheduler.FrameID) {}
