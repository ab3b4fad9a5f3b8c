package cmd

import (
	"github.com/spf13/cobra"

	"crun-go/container"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <container-id>",
	Short: "Delete a container's status and exec FIFO",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "kill the container's worker process first if it's still running")
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	store, err := GetStore()
	if err != nil {
		return err
	}

	c, err := container.New(store, id, "", "", "")
	if err != nil {
		return err
	}
	return c.Delete(deleteForce)
}
