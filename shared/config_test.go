package shared_test

import (
    "io/ioutil"
    "os"
    "path/filepath"

    . "swarmgate/shared"

    . "github.com/onsi/ginkgo"
    . "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
    var configDir string

    BeforeEach(func() {
        var err error

        configDir, err = ioutil.TempDir("", "swarmgate-config-")

        Expect(err).Should(BeNil())
    })

    AfterEach(func() {
        os.RemoveAll(configDir)
    })

    writeConfig := func(contents string) string {
        file := filepath.Join(configDir, "config.yaml")

        Expect(ioutil.WriteFile(file, []byte(contents), 0644)).Should(BeNil())

        return file
    }

    Describe("#LoadFromFile", func() {
        Context("With a complete configuration file", func() {
            It("Should populate every field", func() {
                file := writeConfig(`
managers:
  - manager-1
  - manager-2:3375
port: 2376
gpu: true
simulate: true
drainTimeout: 120
pollInterval: 5
logLevel: debug
`)

                var config YAMLConfig

                Expect(config.LoadFromFile(file)).Should(BeNil())
                Expect(config.Managers).Should(Equal([]string{ "manager-1", "manager-2:3375" }))
                Expect(config.Port).Should(Equal(2376))
                Expect(config.GPU).Should(BeTrue())
                Expect(config.Simulate).Should(BeTrue())
                Expect(config.DrainTimeoutSeconds).Should(Equal(120))
                Expect(config.PollIntervalSeconds).Should(Equal(5))
                Expect(config.LogLevel).Should(Equal("debug"))
            })
        })

        Context("With an empty configuration file", func() {
            It("Should leave the zero values so the built-in defaults apply", func() {
                file := writeConfig("")

                var config YAMLConfig

                Expect(config.LoadFromFile(file)).Should(BeNil())
                Expect(config.Managers).Should(BeEmpty())
                Expect(config.Port).Should(Equal(0))
            })
        })

        Context("With an out of range port", func() {
            It("Should reject the file", func() {
                file := writeConfig("port: 70000")

                var config YAMLConfig

                Expect(config.LoadFromFile(file)).ShouldNot(BeNil())
            })
        })

        Context("With a negative drain timeout", func() {
            It("Should reject the file", func() {
                file := writeConfig("drainTimeout: -1")

                var config YAMLConfig

                Expect(config.LoadFromFile(file)).ShouldNot(BeNil())
            })
        })

        Context("With an unknown log level", func() {
            It("Should reject the file", func() {
                file := writeConfig("logLevel: loud")

                var config YAMLConfig

                Expect(config.LoadFromFile(file)).ShouldNot(BeNil())
            })
        })

        Context("With a malformed manager address", func() {
            It("Should reject the file", func() {
                file := writeConfig(`
managers:
  - manager-1:notaport
`)

                var config YAMLConfig

                Expect(config.LoadFromFile(file)).ShouldNot(BeNil())
            })
        })

        Context("With a file that is not YAML", func() {
            It("Should reject the file", func() {
                file := writeConfig("{{{{")

                var config YAMLConfig

                Expect(config.LoadFromFile(file)).ShouldNot(BeNil())
            })
        })

        Context("With a file that does not exist", func() {
            It("Should return the underlying error", func() {
                var config YAMLConfig

                err := config.LoadFromFile(filepath.Join(configDir, "missing.yaml"))

                Expect(err).ShouldNot(BeNil())
                Expect(os.IsNotExist(err)).Should(BeTrue())
            })
        })
    })
})
