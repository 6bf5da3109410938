package util

import (
    "time"

    . "swarmgate/errors"
    . "swarmgate/logging"
)

const (
    RetryAttemptCeiling = 5
    RetryBaseDelay = time.Second
    RetryMaxDelay = time.Second * 60
)

// RetryPolicy reruns a failing operation with exponentially growing
// delays. Every cluster mutation goes through a policy so that a
// transient network error or a stale-version rejection never aborts a
// lifecycle transition on the first try.
type RetryPolicy struct {
    Attempts int
    BaseDelay time.Duration
    MaxDelay time.Duration
    // Sleep is swappable so tests can observe the delay sequence
    // without waiting it out
    Sleep func(time.Duration)
}

func NewRetryPolicy() *RetryPolicy {
    return &RetryPolicy{
        Attempts: RetryAttemptCeiling,
        BaseDelay: RetryBaseDelay,
        MaxDelay: RetryMaxDelay,
        Sleep: time.Sleep,
    }
}

// Run invokes operation until it succeeds or the attempt ceiling is
// reached. The delay after the nth failure is BaseDelay doubled n-1
// times, capped at MaxDelay. Returns ERetryExhausted once every attempt
// has failed.
func (policy *RetryPolicy) Run(description string, operation func() error) error {
    attempts := policy.Attempts

    if attempts <= 0 {
        attempts = RetryAttemptCeiling
    }

    sleep := policy.Sleep

    if sleep == nil {
        sleep = time.Sleep
    }

    delay := policy.BaseDelay

    if delay <= 0 {
        delay = RetryBaseDelay
    }

    maxDelay := policy.MaxDelay

    if maxDelay <= 0 {
        maxDelay = RetryMaxDelay
    }

    for attempt := 1; attempt <= attempts; attempt++ {
        err := operation()

        if err == nil {
            if attempt > 1 {
                Log.Infof("%s succeeded on attempt %d of %d", description, attempt, attempts)
            }

            return nil
        }

        Log.Warningf("%s failed on attempt %d of %d: %v. Backing off for %v", description, attempt, attempts, err.Error(), delay)

        sleep(delay)

        delay *= 2

        if delay > maxDelay {
            delay = maxDelay
        }
    }

    Log.Errorf("%s failed after %d attempts, giving up", description, attempts)

    return ERetryExhausted
}
