package cmd

import (
	"github.com/spf13/cobra"

	"crun-go/container"
)

var startCmd = &cobra.Command{
	Use:   "start <container-id>",
	Short: "Release a created container by writing its exec FIFO",
	Args:  cobra.ExactArgs(1),
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	id := args[0]

	store, err := GetStore()
	if err != nil {
		return err
	}

	cs, _, err := container.Inspect(store, id)
	if err != nil {
		return err
	}

	c, err := container.New(store, id, cs.Bundle, cs.Rootfs, cs.CgroupPath)
	if err != nil {
		return err
	}
	return c.Start()
}
