package cmd

import (
	"context"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Lists installed actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication(context.Background(), false)
		if err != nil {
			return err
		}
		defer app.Close()

		app.install()

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Name", "Class", "Listens", "Conditions", "Async", "Enabled"})
		table.SetAutoWrapText(false)
		for _, action := range app.dispatcher.Actions() {
			var conditions []string
			for _, condition := range action.Conditions {
				for operator, value := range condition {
					conditions = append(conditions, operator+": "+cast.ToString(value))
				}
			}
			table.Append([]string{
				action.Name,
				action.Class(),
				strings.Join(action.Listens, ", "),
				strings.Join(conditions, ", "),
				cast.ToString(action.Async),
				cast.ToString(action.IsEnabled),
			})
		}
		table.Render()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}
