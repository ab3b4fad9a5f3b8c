package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"crun-go/container"
	"crun-go/status"
)

var stateCmd = &cobra.Command{
	Use:   "state <container-id>",
	Short: "Print a container's status document and liveness",
	Args:  cobra.ExactArgs(1),
	RunE:  runState,
}

func init() {
	rootCmd.AddCommand(stateCmd)
}

type stateOutput struct {
	ID      string                  `json:"id"`
	Running bool                    `json:"running"`
	Status  *status.ContainerStatus `json:"status"`
}

func runState(cmd *cobra.Command, args []string) error {
	id := args[0]

	store, err := GetStore()
	if err != nil {
		return err
	}

	cs, running, err := container.Inspect(store, id)
	if err != nil {
		return err
	}

	out := stateOutput{ID: id, Running: running, Status: cs}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
