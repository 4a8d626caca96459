package cmd

import (
	"fmt"
	"os"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/appconfig"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

//configSource is a config file path, HTTP URL or inline JSON
var configSource string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vrijbrp",
	Short: "Gateway which translates ZGW and ZDS cases into VrijBRP dossiers",
	Long: `Gateway which translates ZGW zaken and ZDS (StUF) messages into VrijBRP dossiers.
Serves the ZDS SOAP endpoint, runs the installed actions and their cronjob`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.Red.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configSource, "cfg", "", "(optional) config file path, HTTP URL or inline JSON. Might be overridden by CONFIG_LOCATION env variable")
}

func initConfig() error {
	if err := appconfig.Read(configSource); err != nil {
		return fmt.Errorf("Error while reading application config: %v", err)
	}

	return appconfig.Init()
}
