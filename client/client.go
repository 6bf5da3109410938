package client

import (
    "context"
    "encoding/json"
    "fmt"
    "net/url"

    . "swarmgate/cluster"
    . "swarmgate/errors"
    . "swarmgate/logging"
)

type APIClientConfig struct {
    Managers []ManagerAddress
    Transport Transport
}

// APIClient speaks the cluster's node and task endpoints through one or
// more manager endpoints. Managers are consumed strictly in the order
// given. The first one that completes a call wins; the client only fails
// an operation once every manager has failed it.
type APIClient struct {
    managers []ManagerAddress
    transport Transport
}

func New(config APIClientConfig) *APIClient {
    transport := config.Transport

    if transport == nil {
        transport = NewHTTPTransport(DefaultClientTimeout)
    }

    return &APIClient{
        managers: config.Managers,
        transport: transport,
    }
}

func (client *APIClient) Managers() []ManagerAddress {
    return client.managers
}

// NodeSpec fetches the current record of a node, trying each manager in
// turn. An empty or unparseable body from one manager is a soft failure:
// the next manager is asked before anything is given up on.
func (client *APIClient) NodeSpec(ctx context.Context, nodeID string) (NodeSpec, error) {
    for i := range client.managers {
        manager := &client.managers[i]
        spec, err := client.nodeSpecAt(ctx, manager, nodeID)

        if err != nil {
            Log.Warningf("Manager %s could not provide the record of node %s: %v", manager.String(), nodeID, err.Error())

            continue
        }

        return spec, nil
    }

    return NodeSpec{ }, EAllManagersFailed
}

func (client *APIClient) nodeSpecAt(ctx context.Context, manager *ManagerAddress, nodeID string) (NodeSpec, error) {
    raw, err := client.transport.Get(ctx, manager.ToHTTPURL("/nodes/" + nodeID))

    if err != nil {
        return NodeSpec{ }, err
    }

    return DecodeNodeSpec(raw)
}

// UpdateNode performs one read-modify-write pass over the node record.
// For each manager in order it refetches the spec so the posted version
// index, role and labels are the freshest available, applies the
// requested change, and posts the update. AvailabilityPreserve keeps the
// availability observed in the same fetch, which makes a label-only
// update possible. There is an unavoidable window between the fetch and
// the post where an independent availability change can be overwritten;
// the version check rejects the post in that case and a retry refetches.
func (client *APIClient) UpdateNode(ctx context.Context, nodeID string, availability NodeAvailability, gpuLabel bool) error {
    for i := range client.managers {
        manager := &client.managers[i]
        spec, err := client.nodeSpecAt(ctx, manager, nodeID)

        if err != nil {
            Log.Warningf("Manager %s could not provide the record of node %s: %v", manager.String(), nodeID, err.Error())

            continue
        }

        if availability != AvailabilityPreserve {
            spec.Availability = availability
        }

        if gpuLabel {
            if spec.Labels == nil {
                spec.Labels = map[string]string{ }
            }

            spec.Labels[GPULabelKey] = "true"
        }

        payload, err := EncodeNodeUpdate(spec)

        if err != nil {
            return err
        }

        updateURL := manager.ToHTTPURL(fmt.Sprintf("/nodes/%s/update?version=%d", nodeID, spec.VersionIndex))

        if _, err := client.transport.Post(ctx, updateURL, payload); err != nil {
            Log.Warningf("Manager %s rejected the update of node %s: %v", manager.String(), nodeID, err.Error())

            continue
        }

        Log.Debugf("Manager %s accepted the update of node %s (version = %d, availability = %s)", manager.String(), nodeID, spec.VersionIndex, spec.Availability)

        return nil
    }

    return EAllManagersFailed
}

// ListTasks lists the tasks currently placed on a node, trying each
// manager in turn.
func (client *APIClient) ListTasks(ctx context.Context, nodeID string) ([]Task, error) {
    filters, err := json.Marshal(map[string][]string{ "node": { nodeID } })

    if err != nil {
        return nil, err
    }

    endpoint := "/tasks?filters=" + url.QueryEscape(string(filters))

    for i := range client.managers {
        manager := &client.managers[i]
        raw, err := client.transport.Get(ctx, manager.ToHTTPURL(endpoint))

        if err != nil {
            Log.Warningf("Manager %s could not list the tasks of node %s: %v", manager.String(), nodeID, err.Error())

            continue
        }

        tasks, err := DecodeTasks(raw)

        if err != nil {
            Log.Warningf("Manager %s returned an unparseable task list for node %s: %v", manager.String(), nodeID, err.Error())

            continue
        }

        return tasks, nil
    }

    return nil, EAllManagersFailed
}
