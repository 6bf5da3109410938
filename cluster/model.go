package cluster

import (
    "encoding/json"
    "fmt"

    . "swarmgate/errors"
)

type NodeRole string

const (
    RoleManager NodeRole = "manager"
    RoleWorker NodeRole = "worker"
)

func (role NodeRole) IsValid() bool {
    return role == RoleManager || role == RoleWorker
}

type NodeAvailability string

const (
    // AvailabilityPreserve is the zero value. An update carrying it keeps
    // whatever availability the node record held when it was fetched.
    AvailabilityPreserve NodeAvailability = ""
    AvailabilityActive NodeAvailability = "active"
    AvailabilityPause NodeAvailability = "pause"
    AvailabilityDrain NodeAvailability = "drain"
)

func (availability NodeAvailability) IsValid() bool {
    switch availability {
    case AvailabilityActive, AvailabilityPause, AvailabilityDrain:
        return true
    }

    return false
}

type TaskState string

const (
    TaskStateNew TaskState = "new"
    TaskStatePending TaskState = "pending"
    TaskStateAssigned TaskState = "assigned"
    TaskStateAccepted TaskState = "accepted"
    TaskStateReady TaskState = "ready"
    TaskStatePreparing TaskState = "preparing"
    TaskStateStarting TaskState = "starting"
    TaskStateRunning TaskState = "running"
    TaskStateComplete TaskState = "complete"
    TaskStateShutdown TaskState = "shutdown"
    TaskStateFailed TaskState = "failed"
    TaskStateRejected TaskState = "rejected"
    TaskStateOrphaned TaskState = "orphaned"
    TaskStateRemove TaskState = "remove"
)

var nonTerminalTaskStates = map[TaskState]bool{
    TaskStateNew: true,
    TaskStatePending: true,
    TaskStateAssigned: true,
    TaskStateAccepted: true,
    TaskStateReady: true,
    TaskStatePreparing: true,
    TaskStateStarting: true,
}

// IsNonTerminal reports whether the task has been scheduled onto a node
// but has not yet reached the running state or any terminal state.
func (state TaskState) IsNonTerminal() bool {
    return nonTerminalTaskStates[state]
}

func (state TaskState) IsRunning() bool {
    return state == TaskStateRunning
}

// GPULabelKey marks nodes that host an accelerator so services can be
// constrained to them.
const GPULabelKey = "gpu"

// NodeSpec is one read of a node record. VersionIndex is the optimistic
// concurrency counter observed at fetch time and must accompany any
// update derived from this spec.
type NodeSpec struct {
    NodeID string
    VersionIndex uint64
    Role NodeRole
    Availability NodeAvailability
    Labels map[string]string
}

type Task struct {
    ID string
    NodeID string
    State TaskState
}

// NodeInfo is one row of the cluster membership view.
type NodeInfo struct {
    ID string
    Hostname string
    Role NodeRole
    Availability NodeAvailability
    State string
    Addr string
}

type nodeEnvelope struct {
    ID string `json:"ID"`
    Version struct {
        Index uint64 `json:"Index"`
    } `json:"Version"`
    Spec struct {
        Role string `json:"Role"`
        Availability string `json:"Availability"`
        Labels map[string]string `json:"Labels"`
    } `json:"Spec"`
}

// DecodeNodeSpec parses a GET /nodes/{id} response body. The role and
// availability strings are checked against the closed enumerations here,
// at the decode boundary, so no other component ever sees a free-form
// state string.
func DecodeNodeSpec(raw []byte) (NodeSpec, error) {
    var envelope nodeEnvelope

    if len(raw) == 0 {
        return NodeSpec{ }, EBadNodeSpec
    }

    if err := json.Unmarshal(raw, &envelope); err != nil {
        return NodeSpec{ }, EBadNodeSpec
    }

    if envelope.ID == "" {
        return NodeSpec{ }, EBadNodeSpec
    }

    role := NodeRole(envelope.Spec.Role)
    availability := NodeAvailability(envelope.Spec.Availability)

    if !role.IsValid() || !availability.IsValid() {
        return NodeSpec{ }, EBadNodeSpec
    }

    return NodeSpec{
        NodeID: envelope.ID,
        VersionIndex: envelope.Version.Index,
        Role: role,
        Availability: availability,
        Labels: envelope.Spec.Labels,
    }, nil
}

type nodeUpdatePayload struct {
    Availability string `json:"Availability"`
    Role string `json:"Role"`
    Labels map[string]string `json:"Labels"`
}

// EncodeNodeUpdate builds a POST /nodes/{id}/update body from a spec. The
// payload always carries the spec's role and full label set so an
// availability change can never silently drop unrelated labels or flip
// the role.
func EncodeNodeUpdate(spec NodeSpec) ([]byte, error) {
    labels := spec.Labels

    if labels == nil {
        labels = map[string]string{ }
    }

    return json.Marshal(nodeUpdatePayload{
        Availability: string(spec.Availability),
        Role: string(spec.Role),
        Labels: labels,
    })
}

type taskEnvelope struct {
    ID string `json:"ID"`
    NodeID string `json:"NodeID"`
    Status struct {
        State string `json:"State"`
    } `json:"Status"`
}

// DecodeTasks parses a GET /tasks response body. Unknown task states are
// rejected rather than classified as terminal, since miscounting an
// unknown state as terminal could end a drain wait early.
func DecodeTasks(raw []byte) ([]Task, error) {
    var envelopes []taskEnvelope

    if len(raw) == 0 {
        return nil, EDrainCheck
    }

    if err := json.Unmarshal(raw, &envelopes); err != nil {
        return nil, EDrainCheck
    }

    tasks := make([]Task, 0, len(envelopes))

    for _, envelope := range envelopes {
        state := TaskState(envelope.Status.State)

        if !state.IsNonTerminal() && !state.IsRunning() {
            switch state {
            case TaskStateComplete, TaskStateShutdown, TaskStateFailed, TaskStateRejected, TaskStateOrphaned, TaskStateRemove:
            default:
                return nil, fmt.Errorf("task %s reports unrecognized state %q", envelope.ID, envelope.Status.State)
            }
        }

        tasks = append(tasks, Task{
            ID: envelope.ID,
            NodeID: envelope.NodeID,
            State: state,
        })
    }

    return tasks, nil
}
