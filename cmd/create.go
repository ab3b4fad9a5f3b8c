package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"crun-go/container"
	"crun-go/spec"
)

var (
	createBundle        string
	createRootfs        string
	createCgroupPath    string
	createPid           int
	createResourcesFile string
	createDeviceProgram bool
)

var createCmd = &cobra.Command{
	Use:   "create <container-id>",
	Short: "Apply resource limits to a cgroup and record the container's status",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&createBundle, "bundle", ".", "path to the OCI bundle (recorded in status only)")
	createCmd.Flags().StringVar(&createRootfs, "rootfs", "", "path to the container rootfs (recorded in status only)")
	createCmd.Flags().StringVar(&createCgroupPath, "cgroup-path", "", "cgroup directory to apply resource limits to")
	createCmd.Flags().IntVar(&createPid, "pid", 0, "pid of the already-running worker process")
	createCmd.Flags().StringVar(&createResourcesFile, "resources", "", "path to a JSON-encoded OCI LinuxResources document")
	createCmd.Flags().BoolVar(&createDeviceProgram, "device-program", false, "load a cgroup v2 device filter program even when every rule allows")

	createCmd.MarkFlagRequired("cgroup-path")
	createCmd.MarkFlagRequired("pid")
}

func runCreate(cmd *cobra.Command, args []string) error {
	id := args[0]

	store, err := GetStore()
	if err != nil {
		return err
	}

	resources := &spec.ResourceSpec{}
	if createResourcesFile != "" {
		data, err := os.ReadFile(createResourcesFile)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, resources); err != nil {
			return err
		}
	}

	c, err := container.New(store, id, createBundle, createRootfs, createCgroupPath)
	if err != nil {
		return err
	}

	return c.Create(createPid, resources, createDeviceProgram)
}
