package engine

import (
    "context"

    "github.com/docker/docker/api/types"
    "github.com/docker/docker/api/types/filters"
    "github.com/docker/docker/api/types/swarm"
    dockerclient "github.com/docker/docker/client"

    . "swarmgate/cluster"
    . "swarmgate/errors"
)

// DockerEngine adapts the Docker daemon on the local host to the Engine
// interface. Node and task calls only succeed when the daemon is a swarm
// manager; the daemon itself enforces that, which IsManager exploits.
type DockerEngine struct {
    api *dockerclient.Client
}

func NewDockerEngine() (*DockerEngine, error) {
    api, err := dockerclient.NewClientWithOpts(dockerclient.FromEnv, dockerclient.WithAPIVersionNegotiation())

    if err != nil {
        return nil, err
    }

    return &DockerEngine{ api: api }, nil
}

func (engine *DockerEngine) Ping(ctx context.Context) error {
    if _, err := engine.api.Ping(ctx); err != nil {
        return ENoEngine
    }

    return nil
}

func (engine *DockerEngine) SelfNodeID(ctx context.Context) (string, error) {
    info, err := engine.api.Info(ctx)

    if err != nil {
        return "", err
    }

    if info.Swarm.NodeID == "" {
        return "", ENoLocalNode
    }

    return info.Swarm.NodeID, nil
}

func (engine *DockerEngine) IsManager(ctx context.Context) bool {
    _, err := engine.api.NodeList(ctx, types.NodeListOptions{ })

    return err == nil
}

func (engine *DockerEngine) ListNodes(ctx context.Context) ([]NodeInfo, error) {
    nodes, err := engine.api.NodeList(ctx, types.NodeListOptions{ })

    if err != nil {
        return nil, err
    }

    nodeInfos := make([]NodeInfo, 0, len(nodes))

    for _, node := range nodes {
        nodeInfo := NodeInfo{
            ID: node.ID,
            Hostname: node.Description.Hostname,
            Role: NodeRole(node.Spec.Role),
            Availability: NodeAvailability(node.Spec.Availability),
            State: string(node.Status.State),
            Addr: node.Status.Addr,
        }

        if node.ManagerStatus != nil && node.ManagerStatus.Addr != "" {
            nodeInfo.Addr = node.ManagerStatus.Addr
        }

        nodeInfos = append(nodeInfos, nodeInfo)
    }

    return nodeInfos, nil
}

func (engine *DockerEngine) InspectNode(ctx context.Context, nodeID string) (NodeSpec, error) {
    node, _, err := engine.api.NodeInspectWithRaw(ctx, nodeID)

    if err != nil {
        return NodeSpec{ }, err
    }

    return NodeSpec{
        NodeID: node.ID,
        VersionIndex: node.Meta.Version.Index,
        Role: NodeRole(node.Spec.Role),
        Availability: NodeAvailability(node.Spec.Availability),
        Labels: node.Spec.Labels,
    }, nil
}

func (engine *DockerEngine) UpdateNode(ctx context.Context, spec NodeSpec) error {
    labels := spec.Labels

    if labels == nil {
        labels = map[string]string{ }
    }

    nodeSpec := swarm.NodeSpec{
        Role: swarm.NodeRole(spec.Role),
        Availability: swarm.NodeAvailability(spec.Availability),
    }

    nodeSpec.Labels = labels

    return engine.api.NodeUpdate(ctx, spec.NodeID, swarm.Version{ Index: spec.VersionIndex }, nodeSpec)
}

func (engine *DockerEngine) ListTasks(ctx context.Context, nodeID string) ([]Task, error) {
    taskFilters := filters.NewArgs(filters.Arg("node", nodeID))
    swarmTasks, err := engine.api.TaskList(ctx, types.TaskListOptions{ Filters: taskFilters })

    if err != nil {
        return nil, err
    }

    tasks := make([]Task, 0, len(swarmTasks))

    for _, swarmTask := range swarmTasks {
        tasks = append(tasks, Task{
            ID: swarmTask.ID,
            NodeID: swarmTask.NodeID,
            State: TaskState(swarmTask.Status.State),
        })
    }

    return tasks, nil
}

func (engine *DockerEngine) ListContainers(ctx context.Context) ([]Container, error) {
    list, err := engine.api.ContainerList(ctx, types.ContainerListOptions{ })

    if err != nil {
        return nil, err
    }

    containers := make([]Container, 0, len(list))

    for _, entry := range list {
        name := entry.ID

        if len(entry.Names) > 0 {
            name = entry.Names[0]
        }

        containers = append(containers, Container{ ID: entry.ID, Name: name })
    }

    return containers, nil
}

func (engine *DockerEngine) RemoveContainer(ctx context.Context, containerID string, force bool) error {
    return engine.api.ContainerRemove(ctx, containerID, types.ContainerRemoveOptions{ Force: force })
}
