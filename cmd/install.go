package cmd

import (
	"context"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Installs sources, mappings, schemas, endpoints, actions and the cronjob and prints what was created",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication(context.Background(), true)
		if err != nil {
			return err
		}
		defer app.Close()

		report := app.install()

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Created", "Count"})
		table.AppendBulk(report.Rows())
		table.Render()

		endpoints := tablewriter.NewWriter(cmd.OutOrStdout())
		endpoints.SetHeader([]string{"Endpoint", "Path", "Throws"})
		for _, endpoint := range app.installer.Endpoints() {
			endpoints.Append([]string{endpoint.Name, "/api" + endpoint.URLPath(), strings.Join(endpoint.Throws, ", ")})
		}
		endpoints.Render()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
