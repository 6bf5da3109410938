package errors

type GateError struct {
    message string
    code int
}

func (gateError GateError) Error() string {
    return gateError.message
}

func (gateError GateError) Code() int {
    return gateError.code
}

const (
    eNO_ENGINE = iota
    eNO_MANAGERS = iota
    eALL_MANAGERS_FAILED = iota
    eRETRY_EXHAUSTED = iota
    eBAD_MODE = iota
    eBAD_PORT = iota
    eBAD_NODE_SPEC = iota
    eNO_LOCAL_NODE = iota
    eDRAIN_CHECK = iota
)

var (
    ENoEngine            = GateError{ "The local container engine could not be reached", eNO_ENGINE }
    ENoManagers          = GateError{ "No manager endpoints are configured or discoverable", eNO_MANAGERS }
    EAllManagersFailed   = GateError{ "Every known manager endpoint rejected or failed the request", eALL_MANAGERS_FAILED }
    ERetryExhausted      = GateError{ "The operation did not succeed within the retry attempt ceiling", eRETRY_EXHAUSTED }
    EBadMode             = GateError{ "The requested mode is not recognized", eBAD_MODE }
    EBadPort             = GateError{ "The specified port is outside the valid range", eBAD_PORT }
    EBadNodeSpec         = GateError{ "The node record returned by the cluster could not be parsed", eBAD_NODE_SPEC }
    ENoLocalNode         = GateError{ "The local host is not a member of a cluster", eNO_LOCAL_NODE }
    EDrainCheck          = GateError{ "The task state of the node could not be determined", eDRAIN_CHECK }
)
