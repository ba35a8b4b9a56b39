package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID is used to derive node IDs from the machine ID.
const AppID = "ftlink"

// MachineID retrieves an ID identifying the machine, derived from the
// machine ID so the raw value isn't exposed. The host name is used when
// the machine ID is unavailable.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil {
		return id[:16]
	}
	glog.V(2).Infof("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown"
}
