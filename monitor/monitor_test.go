package monitor_test

import (
    "context"
    "errors"
    "time"

    . "swarmgate/cluster"
    . "swarmgate/monitor"

    . "github.com/onsi/ginkgo"
    . "github.com/onsi/gomega"
)

// scriptedTaskSource serves one canned task list per poll, in order,
// repeating the last one once the script runs out.
type scriptedTaskSource struct {
    script [][]Task
    errs []error
    polls int
}

func (source *scriptedTaskSource) ListTasks(ctx context.Context, nodeID string) ([]Task, error) {
    index := source.polls

    if index >= len(source.script) {
        index = len(source.script) - 1
    }

    source.polls++

    if source.errs != nil && source.errs[index] != nil {
        return nil, source.errs[index]
    }

    return source.script[index], nil
}

func runningTask(id string) Task {
    return Task{ ID: id, NodeID: "node-1", State: TaskStateRunning }
}

func completeTask(id string) Task {
    return Task{ ID: id, NodeID: "node-1", State: TaskStateComplete }
}

var _ = Describe("DrainMonitor", func() {
    var slept []time.Duration
    var ctx context.Context

    BeforeEach(func() {
        slept = nil
        ctx = context.Background()
    })

    newMonitor := func(source *scriptedTaskSource, timeout, interval time.Duration) *DrainMonitor {
        return NewDrainMonitor(DrainMonitorConfig{
            Tasks: source,
            Timeout: timeout,
            Interval: interval,
            Sleep: func(d time.Duration) {
                slept = append(slept, d)
            },
        })
    }

    Describe("#WaitForDrain", func() {
        Context("When the workload vacates exactly as the timeout elapses", func() {
            It("Should return Drained, not TimedOut", func() {
                // Non-zero running tasks at t=0, 10 and 20; zero at t=30
                // with timeout=30
                source := &scriptedTaskSource{
                    script: [][]Task{
                        { runningTask("t1"), runningTask("t2") },
                        { runningTask("t1") },
                        { runningTask("t1") },
                        { completeTask("t1") },
                    },
                }

                outcome := newMonitor(source, time.Second * 30, time.Second * 10).WaitForDrain(ctx, "node-1")

                Expect(outcome).Should(Equal(Drained))
                Expect(source.polls).Should(Equal(4))
                Expect(slept).Should(Equal([]time.Duration{
                    time.Second * 10,
                    time.Second * 10,
                    time.Second * 10,
                }))
            })
        })

        Context("When the workload never vacates", func() {
            It("Should return TimedOut once elapsed time reaches the timeout, never earlier", func() {
                source := &scriptedTaskSource{
                    script: [][]Task{
                        { runningTask("t1") },
                    },
                }

                outcome := newMonitor(source, time.Second * 30, time.Second * 10).WaitForDrain(ctx, "node-1")

                Expect(outcome).Should(Equal(TimedOut))
                // Polls at t=0, 10, 20 and 30; the wait must not give up
                // before t=30
                Expect(source.polls).Should(Equal(4))
                Expect(slept).Should(HaveLen(3))
            })
        })

        Context("When the node has no running or scheduled tasks at the first poll", func() {
            It("Should return Drained immediately without sleeping", func() {
                source := &scriptedTaskSource{
                    script: [][]Task{
                        { completeTask("t1"), completeTask("t2") },
                    },
                }

                outcome := newMonitor(source, time.Second * 30, time.Second * 10).WaitForDrain(ctx, "node-1")

                Expect(outcome).Should(Equal(Drained))
                Expect(slept).Should(BeEmpty())
            })
        })

        Context("When tasks are scheduled but not yet running", func() {
            It("Should keep waiting on non-terminal states", func() {
                source := &scriptedTaskSource{
                    script: [][]Task{
                        { Task{ ID: "t1", NodeID: "node-1", State: TaskStatePreparing } },
                        { },
                    },
                }

                outcome := newMonitor(source, time.Second * 30, time.Second * 10).WaitForDrain(ctx, "node-1")

                Expect(outcome).Should(Equal(Drained))
                Expect(source.polls).Should(Equal(2))
            })
        })

        Context("When the task query fails mid-wait", func() {
            It("Should short-circuit as Indeterminate instead of looping forever", func() {
                source := &scriptedTaskSource{
                    script: [][]Task{
                        { runningTask("t1") },
                        nil,
                    },
                    errs: []error{
                        nil,
                        errors.New("connection reset"),
                    },
                }

                outcome := newMonitor(source, time.Second * 30, time.Second * 10).WaitForDrain(ctx, "node-1")

                Expect(outcome).Should(Equal(Indeterminate))
                Expect(source.polls).Should(Equal(2))
            })
        })
    })
})
