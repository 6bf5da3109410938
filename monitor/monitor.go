package monitor

import (
    "context"
    "time"

    . "swarmgate/cluster"
    . "swarmgate/logging"
)

type Outcome int

const (
    Drained Outcome = iota
    TimedOut
    Indeterminate
)

func (outcome Outcome) String() string {
    switch outcome {
    case Drained:
        return "drained"
    case TimedOut:
        return "timed out"
    }

    return "indeterminate"
}

const (
    DefaultDrainTimeout = time.Second * 90
    DefaultPollInterval = time.Second * 10
)

// TaskSource is anything that can report the tasks placed on a node.
// Managers use the local engine, workers the proxied API client.
type TaskSource interface {
    ListTasks(ctx context.Context, nodeID string) ([]Task, error)
}

type DrainMonitorConfig struct {
    Tasks TaskSource
    Timeout time.Duration
    Interval time.Duration
    // Sleep is swappable so tests can simulate elapsed time
    Sleep func(time.Duration)
}

// DrainMonitor watches a draining node until its workload has vacated or
// a deadline passes. It only reports the outcome; acting on a timeout is
// the controller's business.
type DrainMonitor struct {
    tasks TaskSource
    timeout time.Duration
    interval time.Duration
    sleep func(time.Duration)
}

func NewDrainMonitor(config DrainMonitorConfig) *DrainMonitor {
    timeout := config.Timeout

    if timeout <= 0 {
        timeout = DefaultDrainTimeout
    }

    interval := config.Interval

    if interval <= 0 {
        interval = DefaultPollInterval
    }

    sleep := config.Sleep

    if sleep == nil {
        sleep = time.Sleep
    }

    return &DrainMonitor{
        tasks: config.Tasks,
        timeout: timeout,
        interval: interval,
        sleep: sleep,
    }
}

// WaitForDrain polls the node's task list until no task is running or
// scheduled, or until the timeout elapses. A failed or unparseable task
// query short-circuits the wait as Indeterminate: looping forever on a
// broken query would block the host shutdown, and the caller falls
// through to forced cleanup anyway.
func (drainMonitor *DrainMonitor) WaitForDrain(ctx context.Context, nodeID string) Outcome {
    var elapsed time.Duration

    for {
        tasks, err := drainMonitor.tasks.ListTasks(ctx, nodeID)

        if err != nil {
            Log.Warningf("Unable to determine the task state of node %s, abandoning the drain wait: %v", nodeID, err.Error())

            return Indeterminate
        }

        running, scheduled := classifyTasks(tasks)

        if running == 0 && scheduled == 0 {
            Log.Infof("Node %s has drained after %v", nodeID, elapsed)

            return Drained
        }

        if elapsed >= drainMonitor.timeout {
            Log.Warningf("Node %s still has %d running and %d scheduled tasks after %v, drain timed out", nodeID, running, scheduled, elapsed)

            return TimedOut
        }

        Log.Infof("Node %s still has %d running and %d scheduled tasks, waited %v of %v", nodeID, running, scheduled, elapsed, drainMonitor.timeout)

        drainMonitor.sleep(drainMonitor.interval)

        elapsed += drainMonitor.interval
    }
}

func classifyTasks(tasks []Task) (running int, scheduled int) {
    for _, task := range tasks {
        if task.State.IsRunning() {
            running++
        } else if task.State.IsNonTerminal() {
            scheduled++
        }
    }

    return
}
