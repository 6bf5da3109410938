package cluster

import (
    "errors"
    "fmt"
    "strconv"
    "strings"
)

// ManagerAddress locates one manager endpoint of the cluster API.
type ManagerAddress struct {
    Host string
    Port int
}

func (managerAddress *ManagerAddress) ToHTTPURL(endpoint string) string {
    return fmt.Sprintf("http://%s:%d%s", managerAddress.Host, managerAddress.Port, endpoint)
}

func (managerAddress *ManagerAddress) String() string {
    return fmt.Sprintf("%s:%d", managerAddress.Host, managerAddress.Port)
}

func IsValidPort(p int) bool {
    return p > 0 && p < (1 << 16)
}

// ParseManagerAddress parses a host:port pair. The port may be omitted,
// in which case defaultPort is filled in.
func ParseManagerAddress(s string, defaultPort int) (ManagerAddress, error) {
    parts := strings.Split(s, ":")

    switch len(parts) {
    case 1:
        if len(parts[0]) == 0 {
            return ManagerAddress{ }, errors.New("manager address is empty")
        }

        return ManagerAddress{ Host: parts[0], Port: defaultPort }, nil
    case 2:
        port64, err := strconv.ParseUint(parts[1], 10, 16)

        if err != nil || port64 == 0 {
            return ManagerAddress{ }, fmt.Errorf("%s is not a valid port in manager address %s", parts[1], s)
        }

        return ManagerAddress{ Host: parts[0], Port: int(port64) }, nil
    }

    return ManagerAddress{ }, fmt.Errorf("%s is not a valid host:port manager address", s)
}

// ParseManagerList parses a comma separated list of host:port pairs in
// the order given. Order matters: endpoints are tried in this order until
// one accepts an update.
func ParseManagerList(s string, defaultPort int) ([]ManagerAddress, error) {
    if len(strings.TrimSpace(s)) == 0 {
        return nil, nil
    }

    var managers []ManagerAddress

    for _, entry := range strings.Split(s, ",") {
        managerAddress, err := ParseManagerAddress(strings.TrimSpace(entry), defaultPort)

        if err != nil {
            return nil, err
        }

        managers = append(managers, managerAddress)
    }

    return managers, nil
}
