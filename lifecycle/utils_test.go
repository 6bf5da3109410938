package lifecycle_test

import (
    "context"
    "errors"
    "time"

    . "swarmgate/cluster"
    "swarmgate/engine"
    "swarmgate/monitor"
    "swarmgate/util"
)

// fakeEngine is an in-memory cluster seen through the local runtime.
type fakeEngine struct {
    selfID string
    manager bool
    specs map[string]*NodeSpec
    nodes []NodeInfo
    tasks []Task
    containers []engine.Container
    updates []NodeSpec
    removed []string
    inspects []string
    updateErr error
    updateErrCount int
}

func newFakeEngine(selfID string, manager bool) *fakeEngine {
    return &fakeEngine{
        selfID: selfID,
        manager: manager,
        specs: map[string]*NodeSpec{ },
    }
}

func (fake *fakeEngine) addNode(spec NodeSpec, hostname string) {
    copied := spec

    fake.specs[spec.NodeID] = &copied
    fake.nodes = append(fake.nodes, NodeInfo{
        ID: spec.NodeID,
        Hostname: hostname,
        Role: spec.Role,
        Availability: spec.Availability,
        State: "ready",
    })
}

func (fake *fakeEngine) Ping(ctx context.Context) error {
    return nil
}

func (fake *fakeEngine) SelfNodeID(ctx context.Context) (string, error) {
    return fake.selfID, nil
}

func (fake *fakeEngine) IsManager(ctx context.Context) bool {
    return fake.manager
}

func (fake *fakeEngine) ListNodes(ctx context.Context) ([]NodeInfo, error) {
    if !fake.manager {
        return nil, errors.New("this node is not a swarm manager")
    }

    return fake.nodes, nil
}

func (fake *fakeEngine) InspectNode(ctx context.Context, nodeID string) (NodeSpec, error) {
    fake.inspects = append(fake.inspects, nodeID)
    spec, ok := fake.specs[nodeID]

    if !ok {
        return NodeSpec{ }, errors.New("no such node")
    }

    return *spec, nil
}

func (fake *fakeEngine) UpdateNode(ctx context.Context, spec NodeSpec) error {
    if fake.updateErrCount > 0 {
        fake.updateErrCount--

        return fake.updateErr
    }

    fake.updates = append(fake.updates, spec)

    stored, ok := fake.specs[spec.NodeID]

    if ok {
        stored.Availability = spec.Availability
        stored.Labels = spec.Labels
        stored.VersionIndex++
    }

    return nil
}

func (fake *fakeEngine) ListTasks(ctx context.Context, nodeID string) ([]Task, error) {
    return fake.tasks, nil
}

func (fake *fakeEngine) ListContainers(ctx context.Context) ([]engine.Container, error) {
    return fake.containers, nil
}

func (fake *fakeEngine) RemoveContainer(ctx context.Context, containerID string, force bool) error {
    fake.removed = append(fake.removed, containerID)

    return nil
}

// fakeProxy records proxied updates the way a worker's manager endpoints
// would see them.
type fakeProxy struct {
    spec NodeSpec
    specErr error
    updates []proxiedUpdate
    updateErr error
}

type proxiedUpdate struct {
    nodeID string
    availability NodeAvailability
    gpuLabel bool
}

func (fake *fakeProxy) NodeSpec(ctx context.Context, nodeID string) (NodeSpec, error) {
    if fake.specErr != nil {
        return NodeSpec{ }, fake.specErr
    }

    return fake.spec, nil
}

func (fake *fakeProxy) UpdateNode(ctx context.Context, nodeID string, availability NodeAvailability, gpuLabel bool) error {
    if fake.updateErr != nil {
        return fake.updateErr
    }

    fake.updates = append(fake.updates, proxiedUpdate{ nodeID: nodeID, availability: availability, gpuLabel: gpuLabel })

    return nil
}

type fakeMonitor struct {
    outcome monitor.Outcome
    waits int
}

func (fake *fakeMonitor) WaitForDrain(ctx context.Context, nodeID string) monitor.Outcome {
    fake.waits++

    return fake.outcome
}

func quietRetryPolicy() *util.RetryPolicy {
    policy := util.NewRetryPolicy()
    policy.Sleep = func(time.Duration) { }

    return policy
}
