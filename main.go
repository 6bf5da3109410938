package main

import (
    "context"
    "flag"
    "fmt"
    "os"
    "time"

    "github.com/google/uuid"
    "github.com/olekukonko/tablewriter"

    "swarmgate/client"
    . "swarmgate/cluster"
    "swarmgate/detector"
    "swarmgate/engine"
    "swarmgate/lifecycle"
    . "swarmgate/logging"
    "swarmgate/monitor"
    "swarmgate/shared"
    "swarmgate/util"
    . "swarmgate/version"
)

var templateConfig string =
`# Manager endpoints to proxy node updates through when this host is a
# worker. Each entry is host or host:port. When the list is omitted the
# managers are discovered by querying the local cluster membership view,
# which only works on manager hosts.
# managers:
#    - 10.0.0.10:2375
#    - 10.0.0.11:2375

# The port on which the cluster API is reachable. Used both for entries
# above that omit a port and for discovered managers.
port: 2375

# Set to true to force the gpu=true node label on startup regardless of
# what the PCI bus enumeration finds.
gpu: false

# When true every mutating action is logged but not performed. Read-only
# queries still execute.
simulate: false

# How long shutdown waits for the node's workload to vacate, in seconds,
# and how often the task list is polled while waiting.
drainTimeout: 90
pollInterval: 10

# These are the possible log levels in order from lowest to highest level.
# critical
# error
# warning
# notice
# info
# debug
logLevel: info
`

var usage string =
`Usage: swarmgate <command> <arguments> | -version

Commands:
    startup    Reactivate this node after boot (alias: up)
    shutdown   Drain this node before the host powers off (alias: down)
    status     Print the cluster membership and availability table
    conf       Generate a template config file

Use swarmgate help <command> for more usage information about a command.
`

var commandUsage string = "Usage: swarmgate %s <arguments>\n"

type lifecycleFlags struct {
    managers *string
    port *int
    gpu *bool
    simulate *bool
    drainTimeout *int
    pollInterval *int
    logLevel *string
}

func registerLifecycleFlags(flagSet *flag.FlagSet, defaults *shared.YAMLConfig) *lifecycleFlags {
    port := defaults.Port

    if port == 0 {
        port = shared.DefaultAPIPort
    }

    drainTimeout := defaults.DrainTimeoutSeconds

    if drainTimeout == 0 {
        drainTimeout = int(monitor.DefaultDrainTimeout / time.Second)
    }

    pollInterval := defaults.PollIntervalSeconds

    if pollInterval == 0 {
        pollInterval = int(monitor.DefaultPollInterval / time.Second)
    }

    logLevel := defaults.LogLevel

    if logLevel == "" {
        logLevel = "info"
    }

    var managerDefault string

    for i, manager := range defaults.Managers {
        if i > 0 {
            managerDefault += ","
        }

        managerDefault += manager
    }

    return &lifecycleFlags{
        managers: flagSet.String("managers", managerDefault, "Comma separated list of manager endpoints (host or host:port). Discovered from the local membership view if omitted."),
        port: flagSet.Int("port", port, "The port on which the cluster API is reachable."),
        gpu: flagSet.Bool("gpu", defaults.GPU, "Force the gpu=true node label instead of relying on PCI bus detection."),
        simulate: flagSet.Bool("simulate", defaults.Simulate, "Log every mutating action without performing it."),
        drainTimeout: flagSet.Int("drain_timeout", drainTimeout, "Seconds to wait for the node's workload to vacate during shutdown."),
        pollInterval: flagSet.Int("poll_interval", pollInterval, "Seconds between task list polls while waiting for the drain."),
        logLevel: flagSet.String("log_level", logLevel, "Log level: critical, error, warning, notice, info or debug."),
    }
}

func main() {
    defaults, err := shared.LoadDefaultConfig()

    if err != nil {
        fmt.Fprintf(os.Stderr, "Error: Unable to load %s: %v\n", shared.DefaultConfigFile, err)
        os.Exit(1)
    }

    startupCommand := flag.NewFlagSet("startup", flag.ExitOnError)
    shutdownCommand := flag.NewFlagSet("shutdown", flag.ExitOnError)
    statusCommand := flag.NewFlagSet("status", flag.ExitOnError)
    confCommand := flag.NewFlagSet("conf", flag.ExitOnError)
    helpCommand := flag.NewFlagSet("help", flag.ExitOnError)

    startupFlags := registerLifecycleFlags(startupCommand, defaults)
    shutdownFlags := registerLifecycleFlags(shutdownCommand, defaults)
    statusLogLevel := statusCommand.String("log_level", "error", "Log level while gathering the status table.")

    if len(os.Args) < 2 {
        fmt.Fprintf(os.Stderr, "Error: %s", "No command specified\n\n")
        fmt.Fprintf(os.Stderr, "%s", usage)
        os.Exit(1)
    }

    switch os.Args[1] {
    case "startup", "up":
        startupCommand.Parse(os.Args[2:])
    case "shutdown", "down":
        shutdownCommand.Parse(os.Args[2:])
    case "status":
        statusCommand.Parse(os.Args[2:])
    case "conf":
        confCommand.Parse(os.Args[2:])
    case "help":
        helpCommand.Parse(os.Args[2:])
    case "-help":
        fmt.Fprintf(os.Stderr, "%s", usage)
        os.Exit(0)
    case "-version":
        fmt.Fprintf(os.Stdout, "%s\n", SWARMGATE_VERSION)
        os.Exit(0)
    default:
        fmt.Fprintf(os.Stderr, "Error: \"%s\" is not a recognized command\n\n", os.Args[1])
        fmt.Fprintf(os.Stderr, "%s", usage)
        os.Exit(1)
    }

    if startupCommand.Parsed() {
        runLifecycle("startup", startupFlags)
    }

    if shutdownCommand.Parsed() {
        runLifecycle("shutdown", shutdownFlags)
    }

    if statusCommand.Parsed() {
        SetLoggingLevel(*statusLogLevel)
        printStatus()
    }

    if confCommand.Parsed() {
        fmt.Fprintf(os.Stdout, "%s", templateConfig)
        os.Exit(0)
    }

    if helpCommand.Parsed() {
        if len(os.Args) < 3 {
            fmt.Fprintf(os.Stderr, "Error: No command specified for help\n")
            os.Exit(1)
        }

        var flagSet *flag.FlagSet

        switch os.Args[2] {
        case "startup", "up":
            flagSet = startupCommand
        case "shutdown", "down":
            flagSet = shutdownCommand
        case "status":
            flagSet = statusCommand
        case "conf":
            fmt.Fprintf(os.Stderr, "Usage: swarmgate conf\n")
            os.Exit(0)
        default:
            fmt.Fprintf(os.Stderr, "Error: \"%s\" is not a valid command.\n", os.Args[2])
            os.Exit(1)
        }

        fmt.Fprintf(os.Stderr, commandUsage + "\n", os.Args[2])
        flagSet.PrintDefaults()
        os.Exit(0)
    }
}

func runLifecycle(mode string, flags *lifecycleFlags) {
    if !LogLevelIsValid(*flags.logLevel) {
        fmt.Fprintf(os.Stderr, "Error: %s is not a valid log level\n", *flags.logLevel)
        os.Exit(1)
    }

    SetLoggingLevel(*flags.logLevel)
    EnableSyslog()

    if !IsValidPort(*flags.port) {
        Log.Criticalf("%d is not a valid cluster API port", *flags.port)
        os.Exit(1)
    }

    configuredManagers, err := ParseManagerList(*flags.managers, *flags.port)

    if err != nil {
        Log.Criticalf("Unable to parse the manager list: %v", err.Error())
        os.Exit(1)
    }

    dockerEngine, err := engine.NewDockerEngine()

    if err != nil {
        Log.Criticalf("Unable to initialize the container engine client: %v", err.Error())
        os.Exit(1)
    }

    ctx := context.Background()

    if err := dockerEngine.Ping(ctx); err != nil {
        Log.Criticalf("The local container engine is not reachable: %v", err.Error())
        os.Exit(1)
    }

    runID := uuid.New().String()
    isManager := dockerEngine.IsManager(ctx)

    // Resolved once per invocation. Workers have no local mutation path,
    // so a worker with neither a configured manager list nor a
    // discoverable one cannot proceed.
    managers, err := client.ResolveManagers(ctx, configuredManagers, dockerEngine, *flags.port)

    if err != nil {
        Log.Criticalf("No managers are configured and discovery failed: %v", err.Error())
        os.Exit(1)
    }

    proxy := client.New(client.APIClientConfig{ Managers: managers })

    gpu := false

    if mode == "startup" {
        gpu = *flags.gpu || detector.NewGPUDetector(detector.GPUDetectorConfig{ }).DetectGPU()
    }

    var taskSource monitor.TaskSource = proxy

    if isManager {
        taskSource = dockerEngine
    }

    drainMonitor := monitor.NewDrainMonitor(monitor.DrainMonitorConfig{
        Tasks: taskSource,
        Timeout: time.Duration(*flags.drainTimeout) * time.Second,
        Interval: time.Duration(*flags.pollInterval) * time.Second,
    })

    controller := lifecycle.New(lifecycle.ControllerConfig{
        Engine: dockerEngine,
        Proxy: proxy,
        Monitor: drainMonitor,
        Retry: util.NewRetryPolicy(),
        GPU: gpu,
        Simulate: *flags.simulate,
        RunID: runID,
    })

    switch mode {
    case "startup":
        err = controller.Startup(ctx)
    case "shutdown":
        err = controller.Shutdown(ctx)
    }

    if err != nil {
        Log.Criticalf("%s did not complete: %v", mode, err.Error())
        os.Exit(1)
    }

    Log.Infof("%s complete (run = %s)", mode, runID)
}

func printStatus() {
    dockerEngine, err := engine.NewDockerEngine()

    if err != nil {
        fmt.Fprintf(os.Stderr, "Error: Unable to initialize the container engine client: %v\n", err)
        os.Exit(1)
    }

    ctx := context.Background()
    nodes, err := dockerEngine.ListNodes(ctx)

    if err != nil {
        fmt.Fprintf(os.Stderr, "Error: Unable to list cluster members (is this host a manager?): %v\n", err)
        os.Exit(1)
    }

    table := tablewriter.NewWriter(os.Stdout)
    table.SetHeader([]string{ "ID", "Hostname", "Role", "Availability", "State", "Address" })

    for _, node := range nodes {
        table.Append([]string{
            node.ID,
            node.Hostname,
            string(node.Role),
            string(node.Availability),
            node.State,
            node.Addr,
        })
    }

    table.Render()
}
