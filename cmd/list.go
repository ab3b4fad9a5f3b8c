package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"crun-go/container"
)

var (
	listQuiet  bool
	listFormat string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ps"},
	Short:   "List containers tracked by the status store",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVarP(&listQuiet, "quiet", "q", false, "display only container IDs")
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table, json)")
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := GetStore()
	if err != nil {
		return err
	}

	entries, err := container.List(store)
	if err != nil {
		return err
	}

	if listQuiet {
		for _, e := range entries {
			fmt.Println(e.ID)
		}
		return nil
	}

	if listFormat == "json" {
		return outputJSON(entries)
	}
	return outputTable(entries)
}

func outputTable(entries []container.Entry) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPID\tRUNNING\tBUNDLE\tCREATED")

	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%t\t%s\t%s\n",
			e.ID, e.Status.Pid, e.Running, e.Status.Bundle, e.Status.Created)
	}
	return w.Flush()
}

func outputJSON(entries []container.Entry) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}
