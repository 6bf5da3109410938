package util_test

import (
    "errors"
    "time"

    . "swarmgate/errors"
    . "swarmgate/util"

    . "github.com/onsi/ginkgo"
    . "github.com/onsi/gomega"
)

var _ = Describe("RetryPolicy", func() {
    var delays []time.Duration
    var policy *RetryPolicy

    BeforeEach(func() {
        delays = nil
        policy = NewRetryPolicy()
        policy.Sleep = func(d time.Duration) {
            delays = append(delays, d)
        }
    })

    Describe("#Run", func() {
        Context("When the operation fails on every attempt", func() {
            It("Should back off for 1, 2, 4, 8 and 16 seconds and never make a sixth attempt", func() {
                calls := 0

                err := policy.Run("Test operation", func() error {
                    calls++

                    return errors.New("transient failure")
                })

                Expect(err).Should(Equal(ERetryExhausted))
                Expect(calls).Should(Equal(5))
                Expect(delays).Should(Equal([]time.Duration{
                    time.Second * 1,
                    time.Second * 2,
                    time.Second * 4,
                    time.Second * 8,
                    time.Second * 16,
                }))
            })
        })

        Context("When the doubled delay would exceed the maximum", func() {
            It("Should cap every subsequent delay at the maximum", func() {
                policy.BaseDelay = time.Second * 20

                policy.Run("Test operation", func() error {
                    return errors.New("transient failure")
                })

                Expect(delays).Should(Equal([]time.Duration{
                    time.Second * 20,
                    time.Second * 40,
                    time.Second * 60,
                    time.Second * 60,
                    time.Second * 60,
                }))
            })
        })

        Context("When the operation succeeds after a few failures", func() {
            It("Should stop retrying as soon as the operation succeeds", func() {
                calls := 0

                err := policy.Run("Test operation", func() error {
                    calls++

                    if calls < 3 {
                        return errors.New("transient failure")
                    }

                    return nil
                })

                Expect(err).Should(BeNil())
                Expect(calls).Should(Equal(3))
                Expect(delays).Should(Equal([]time.Duration{
                    time.Second * 1,
                    time.Second * 2,
                }))
            })
        })

        Context("When the operation succeeds immediately", func() {
            It("Should not sleep at all", func() {
                err := policy.Run("Test operation", func() error {
                    return nil
                })

                Expect(err).Should(BeNil())
                Expect(delays).Should(BeEmpty())
            })
        })
    })
})
