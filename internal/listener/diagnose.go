package listener

import (
	"fmt"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// portHolder names the processes with a UDP socket bound to port, as
// "name[pid]" entries. It returns "" when the socket table is unreadable.
func portHolder(port int) string {
	conns, err := psnet.Connections("udp")
	if err != nil {
		return ""
	}

	seen := make(map[int32]bool)
	var holders []string
	for _, c := range conns {
		if int(c.Laddr.Port) != port || c.Pid == 0 || seen[c.Pid] {
			continue
		}
		seen[c.Pid] = true

		name := "unknown"
		if p, err := process.NewProcess(c.Pid); err == nil {
			if n, err := p.Name(); err == nil && n != "" {
				name = n
			}
		}
		holders = append(holders, fmt.Sprintf("%s[%d]", name, c.Pid))
	}
	return strings.Join(holders, ", ")
}
