package client

import (
    "context"
    "strings"

    . "swarmgate/cluster"
    . "swarmgate/errors"
    . "swarmgate/logging"
)

// MembershipSource is anything that can list the cluster membership view.
// In practice this is the local container engine; workers are denied the
// query by the cluster itself.
type MembershipSource interface {
    ListNodes(ctx context.Context) ([]NodeInfo, error)
}

// ResolveManagers returns the manager endpoints to proxy through, in the
// order they will be tried. An explicitly configured list wins. Otherwise
// the membership view is asked for nodes with the manager role, keeping
// discovery order, and each manager's advertised host is paired with the
// cluster API port. An empty result is fatal: with no manager there is
// nothing to proxy a lifecycle transition through.
func ResolveManagers(ctx context.Context, configured []ManagerAddress, membership MembershipSource, apiPort int) ([]ManagerAddress, error) {
    if len(configured) > 0 {
        return configured, nil
    }

    nodes, err := membership.ListNodes(ctx)

    if err != nil {
        Log.Errorf("Manager discovery failed because the cluster membership could not be listed: %v", err.Error())

        return nil, ENoManagers
    }

    var managers []ManagerAddress

    for _, node := range nodes {
        if node.Role != RoleManager {
            continue
        }

        host := node.Addr

        if i := strings.LastIndex(host, ":"); i >= 0 {
            host = host[:i]
        }

        if len(host) == 0 || host == "0.0.0.0" {
            host = node.Hostname
        }

        if len(host) == 0 {
            continue
        }

        managers = append(managers, ManagerAddress{ Host: host, Port: apiPort })
    }

    if len(managers) == 0 {
        return nil, ENoManagers
    }

    return managers, nil
}
