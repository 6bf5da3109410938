package engine

import (
    "context"

    . "swarmgate/cluster"
)

// Container is one workload container as reported by the local runtime.
type Container struct {
    ID string
    Name string
}

// Engine is the local container runtime surface used by the lifecycle
// controller. The Docker implementation lives in docker.go; tests use a
// fake. Two kinds of operation meet here: membership and node mutation
// calls that the runtime forwards to the cluster control plane without a
// network hop (manager hosts only), and plain container operations used
// for the forced cleanup after a drain timeout.
type Engine interface {
    // Ping verifies that the runtime is reachable at all. A failure is
    // fatal before any lifecycle work starts.
    Ping(ctx context.Context) error
    // SelfNodeID returns the cluster node ID of the local host. Known to
    // workers as well as managers.
    SelfNodeID(ctx context.Context) (string, error)
    // IsManager reports whether the local host can serve cluster
    // membership queries. The cluster denies those to workers, so a
    // denial means "worker", not an error.
    IsManager(ctx context.Context) bool
    ListNodes(ctx context.Context) ([]NodeInfo, error)
    InspectNode(ctx context.Context, nodeID string) (NodeSpec, error)
    UpdateNode(ctx context.Context, spec NodeSpec) error
    ListTasks(ctx context.Context, nodeID string) ([]Task, error)
    ListContainers(ctx context.Context) ([]Container, error)
    RemoveContainer(ctx context.Context, containerID string, force bool) error
}
