package shared

import (
    "errors"
    "fmt"
    "io/ioutil"
    "os"

    "gopkg.in/yaml.v2"

    . "swarmgate/cluster"
    . "swarmgate/logging"
)

// DefaultConfigFile is read before argument parsing when it exists.
// Values found there are the lowest precedence layer; any flag given on
// the command line overrides them.
const DefaultConfigFile = "/etc/swarmgate/config.yaml"

const DefaultAPIPort = 2375

type YAMLConfig struct {
    Managers []string `yaml:"managers"`
    Port int `yaml:"port"`
    GPU bool `yaml:"gpu"`
    Simulate bool `yaml:"simulate"`
    DrainTimeoutSeconds int `yaml:"drainTimeout"`
    PollIntervalSeconds int `yaml:"pollInterval"`
    LogLevel string `yaml:"logLevel"`
}

func (yamlConfig *YAMLConfig) LoadFromFile(file string) error {
    rawConfig, err := ioutil.ReadFile(file)

    if err != nil {
        return err
    }

    err = yaml.Unmarshal(rawConfig, yamlConfig)

    if err != nil {
        return err
    }

    if yamlConfig.Port != 0 && !IsValidPort(yamlConfig.Port) {
        return errors.New(fmt.Sprintf("%d is an invalid port for the cluster API", yamlConfig.Port))
    }

    if yamlConfig.DrainTimeoutSeconds < 0 {
        return errors.New("drainTimeout must not be negative")
    }

    if yamlConfig.PollIntervalSeconds < 0 {
        return errors.New("pollInterval must not be negative")
    }

    if len(yamlConfig.LogLevel) != 0 && !LogLevelIsValid(yamlConfig.LogLevel) {
        return errors.New(fmt.Sprintf("%s is not a valid log level", yamlConfig.LogLevel))
    }

    for _, manager := range yamlConfig.Managers {
        if _, err := ParseManagerAddress(manager, DefaultAPIPort); err != nil {
            return errors.New(fmt.Sprintf("%s is not a valid manager address: %v", manager, err))
        }
    }

    return nil
}

// LoadDefaultConfig reads the well-known config file when present. A
// missing file is not an error, the built-in defaults simply apply; a
// present but invalid file is reported so a typo does not silently fall
// back to defaults.
func LoadDefaultConfig() (*YAMLConfig, error) {
    var yamlConfig YAMLConfig

    err := yamlConfig.LoadFromFile(DefaultConfigFile)

    if err != nil {
        if os.IsNotExist(err) {
            return &yamlConfig, nil
        }

        return nil, err
    }

    Log.Debugf("Loaded configuration overrides from %s", DefaultConfigFile)

    return &yamlConfig, nil
}
