// crun-go applies OCI resource limits to a cgroup (v1, v2, or hybrid) and
// tracks container status on disk.
//
// Commands:
//
//	create  - Apply resource limits to a cgroup and record a container's status
//	start   - Release a created container by writing its exec FIFO
//	state   - Print a container's status document and liveness
//	delete  - Delete a container's status and exec FIFO
//	list    - List containers
//	version - Print version information
package main

import (
	"fmt"
	"os"

	"crun-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
