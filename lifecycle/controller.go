package lifecycle

import (
    "context"

    . "swarmgate/cluster"
    "swarmgate/engine"
    . "swarmgate/errors"
    . "swarmgate/logging"
    "swarmgate/monitor"
    "swarmgate/util"
)

// ProxyClient is the remote mutation path used when the local host is a
// worker and node updates have to go through a manager endpoint.
type ProxyClient interface {
    NodeSpec(ctx context.Context, nodeID string) (NodeSpec, error)
    UpdateNode(ctx context.Context, nodeID string, availability NodeAvailability, gpuLabel bool) error
}

type DrainWaiter interface {
    WaitForDrain(ctx context.Context, nodeID string) monitor.Outcome
}

type ControllerConfig struct {
    Engine engine.Engine
    // Proxy may be nil on manager hosts, which mutate the local node
    // directly
    Proxy ProxyClient
    Monitor DrainWaiter
    Retry *util.RetryPolicy
    GPU bool
    Simulate bool
    RunID string
}

// Controller drives the two terminal workflows of a host's life: startup
// reactivation and shutdown drain. One controller performs exactly one
// workflow and the process exits.
type Controller struct {
    engine engine.Engine
    proxy ProxyClient
    monitor DrainWaiter
    retry *util.RetryPolicy
    gpu bool
    simulate bool
    runID string
}

func New(config ControllerConfig) *Controller {
    retry := config.Retry

    if retry == nil {
        retry = util.NewRetryPolicy()
    }

    return &Controller{
        engine: config.Engine,
        proxy: config.Proxy,
        monitor: config.Monitor,
        retry: retry,
        gpu: config.GPU,
        simulate: config.Simulate,
        runID: config.RunID,
    }
}

// Startup reactivates the local node and, on managers, every previously
// drained worker. Exhausting the retries of any step is fatal: a cluster
// left half-restored after boot has to be visible, not silently
// swallowed.
func (controller *Controller) Startup(ctx context.Context) error {
    nodeID, isManager, err := controller.prepare(ctx)

    if err != nil {
        return err
    }

    if controller.gpu {
        err := controller.retry.Run("Applying the GPU label to the local node", func() error {
            return controller.updateNode(ctx, nodeID, isManager, AvailabilityPreserve, true)
        })

        if err != nil {
            return err
        }
    }

    err = controller.retry.Run("Activating the local node", func() error {
        return controller.updateNode(ctx, nodeID, isManager, AvailabilityActive, false)
    })

    if err != nil {
        return err
    }

    if !isManager {
        return nil
    }

    // Cold cluster restart recovery: a manager coming back up must not
    // leave workers stuck in the drain state their own shutdowns put
    // them in.
    var nodes []NodeInfo

    err = controller.retry.Run("Listing cluster members", func() error {
        var listErr error

        nodes, listErr = controller.engine.ListNodes(ctx)

        return listErr
    })

    if err != nil {
        return err
    }

    for _, node := range nodes {
        if node.ID == nodeID || node.Role != RoleWorker || node.Availability != AvailabilityDrain {
            continue
        }

        peerID := node.ID
        err := controller.retry.Run("Reactivating drained worker " + peerID, func() error {
            return controller.updateNode(ctx, peerID, true, AvailabilityActive, false)
        })

        if err != nil {
            return err
        }
    }

    return nil
}

// Shutdown drains the local node and waits, within a bound, for its
// workload to vacate. A drain that fails or times out is logged and
// answered with forced container cleanup; the host shutdown is never
// blocked indefinitely on stuck tasks.
func (controller *Controller) Shutdown(ctx context.Context) error {
    nodeID, isManager, err := controller.prepare(ctx)

    if err != nil {
        return err
    }

    drainErr := controller.retry.Run("Draining the local node", func() error {
        return controller.updateNode(ctx, nodeID, isManager, AvailabilityDrain, false)
    })

    outcome := monitor.Drained

    if controller.simulate {
        Log.Infof("Skipping the drain wait for node %s (run = %s, simulate = true)", nodeID, controller.runID)
    } else {
        outcome = controller.monitor.WaitForDrain(ctx, nodeID)
    }

    if outcome != monitor.Drained || drainErr != nil {
        controller.forceCleanup(ctx)
    }

    if drainErr != nil {
        return drainErr
    }

    if outcome != monitor.Drained {
        Log.Warningf("Node %s did not drain cleanly (%v), proceeding with host shutdown anyway", nodeID, outcome)
    }

    return nil
}

func (controller *Controller) prepare(ctx context.Context) (string, bool, error) {
    nodeID, err := controller.engine.SelfNodeID(ctx)

    if err != nil {
        Log.Criticalf("Unable to determine the local node ID: %v", err.Error())

        return "", false, err
    }

    isManager := controller.engine.IsManager(ctx)
    role := RoleWorker

    if isManager {
        role = RoleManager
    }

    Log.Infof("Local node %s is a %s (run = %s, simulate = %v)", nodeID, role, controller.runID, controller.simulate)

    return nodeID, isManager, nil
}

// updateNode applies one availability or label change to a node. The
// current record is always fetched first, even in simulation, so the
// audit line reflects the real starting state. Managers mutate the node
// through the local engine; workers proxy the update through the
// configured manager endpoints.
func (controller *Controller) updateNode(ctx context.Context, nodeID string, local bool, availability NodeAvailability, gpuLabel bool) error {
    var spec NodeSpec
    var err error

    if local {
        spec, err = controller.engine.InspectNode(ctx, nodeID)
    } else {
        if controller.proxy == nil {
            return ENoManagers
        }

        spec, err = controller.proxy.NodeSpec(ctx, nodeID)
    }

    if err != nil {
        return err
    }

    target := spec.Availability

    if availability != AvailabilityPreserve {
        target = availability
    }

    Log.Infof("action=update-node run=%s node=%s availability=%s->%s gpu=%v simulate=%v", controller.runID, nodeID, spec.Availability, target, gpuLabel, controller.simulate)

    if controller.simulate {
        return nil
    }

    if local {
        spec.Availability = target

        if gpuLabel {
            if spec.Labels == nil {
                spec.Labels = map[string]string{ }
            }

            spec.Labels[GPULabelKey] = "true"
        }

        return controller.engine.UpdateNode(ctx, spec)
    }

    return controller.proxy.UpdateNode(ctx, nodeID, availability, gpuLabel)
}

// forceCleanup removes whatever containers are still running locally.
// Last resort after a drain timeout; errors are logged and skipped since
// the host is going down either way.
func (controller *Controller) forceCleanup(ctx context.Context) {
    containers, err := controller.engine.ListContainers(ctx)

    if err != nil {
        Log.Errorf("Unable to list local containers for forced cleanup: %v", err.Error())

        return
    }

    for _, container := range containers {
        Log.Infof("action=remove-container run=%s container=%s name=%s simulate=%v", controller.runID, container.ID, container.Name, controller.simulate)

        if controller.simulate {
            continue
        }

        if err := controller.engine.RemoveContainer(ctx, container.ID, true); err != nil {
            Log.Warningf("Unable to remove container %s: %v", container.ID, err.Error())
        }
    }
}
