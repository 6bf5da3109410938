package detector

import (
    "os/exec"
    "strings"

    . "swarmgate/logging"
)

// Accelerator vendor strings as they appear in lspci device listings.
var gpuVendorSignatures = []string{
    "NVIDIA",
    "AMD/ATI",
}

type GPUDetectorConfig struct {
    // LookPath and ListDevices are swappable so tests can fake the PCI
    // bus listing
    LookPath func(file string) (string, error)
    ListDevices func() ([]byte, error)
}

// GPUDetector inspects the local PCI bus listing for known accelerator
// vendors. Detection is best effort: a host without the enumeration tool
// is reported as having no GPU rather than failing the lifecycle run.
type GPUDetector struct {
    lookPath func(file string) (string, error)
    listDevices func() ([]byte, error)
}

func NewGPUDetector(config GPUDetectorConfig) *GPUDetector {
    lookPath := config.LookPath

    if lookPath == nil {
        lookPath = exec.LookPath
    }

    listDevices := config.ListDevices

    if listDevices == nil {
        listDevices = func() ([]byte, error) {
            return exec.Command("lspci").Output()
        }
    }

    return &GPUDetector{
        lookPath: lookPath,
        listDevices: listDevices,
    }
}

func (detector *GPUDetector) DetectGPU() bool {
    if _, err := detector.lookPath("lspci"); err != nil {
        Log.Warningf("lspci is not available, assuming this node has no GPU")

        return false
    }

    output, err := detector.listDevices()

    if err != nil {
        Log.Warningf("Unable to enumerate PCI devices, assuming this node has no GPU: %v", err.Error())

        return false
    }

    for _, line := range strings.Split(string(output), "\n") {
        for _, signature := range gpuVendorSignatures {
            if strings.Contains(line, signature) {
                Log.Infof("Detected GPU device: %s", strings.TrimSpace(line))

                return true
            }
        }
    }

    return false
}
