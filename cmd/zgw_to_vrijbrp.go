package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/actions"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/vrijbrp"
	"github.com/spf13/cobra"
)

var ErrEmptyResult = errors.New("handler returned an empty result")

//shorthands of the common configuration flags
var shorthands = map[string]string{
	"source":   "s",
	"location": "l",
	"mapping":  "m",
}

//handlerCommand runs a ZGW to VrijBRP handler for a single zaak
type handlerCommand struct {
	use   string
	short string

	newHandler func(service *vrijbrp.Service) actions.Handler
	//data returns the handler input for the zaak id
	data func(zaakID string) map[string]interface{}
	//defaults are configuration flags with their default values
	defaults map[string]string
}

//zaakSelf is the input of the zaak triggered handlers: {"object": {"_self": {"id": zaakID}}}
func zaakSelf(zaakID string) map[string]interface{} {
	return map[string]interface{}{"object": map[string]interface{}{"_self": map[string]interface{}{"id": zaakID}}}
}

//handlerDefaults returns defaults of the handler schema with the source reference as the default source
func handlerDefaults(newHandler func(service *vrijbrp.Service) actions.Handler) map[string]string {
	defaults := map[string]string{
		"source":                vrijbrp.DefaultSourceReference,
		"location":              "",
		"mapping":               "",
		"synchronizationEntity": vrijbrp.DefaultSynchronizationEntity,
	}
	for key, value := range actions.DefaultConfiguration(newHandler(&vrijbrp.Service{})) {
		if key == "source" {
			continue
		}
		if s, ok := value.(string); ok {
			defaults[key] = s
		}
	}
	return defaults
}

var zgwToVrijbrpCommand = &handlerCommand{
	use:        "zgw-to-vrijbrp",
	short:      "Maps a ZGW zaak and sends it to the VrijBRP api",
	newHandler: actions.NewZgwToVrijbrpHandler,
	data: func(zaakID string) map[string]interface{} {
		return map[string]interface{}{"id": zaakID}
	},
	defaults: map[string]string{
		"source":          vrijbrp.DefaultSource,
		"location":        "/api/births",
		"mapping":         vrijbrp.GenericMapping,
		"conditionEntity": vrijbrp.DefaultSynchronizationEntity,
	},
}

var zgwToVrijbrpSubcommands = []*handlerCommand{
	{use: "birth", short: "Maps a ZGW zaak of a birth e-dienst and sends it to the VrijBRP api /dossiers", newHandler: actions.NewZgwToVrijbrpHandler},
	{use: "relocation", short: "Maps a ZGW zaak of a relocation e-dienst and sends it to the VrijBRP api", newHandler: actions.NewRelocationHandler},
	{use: "deceasement", short: "Maps a ZGW zaak of a deceasement e-dienst and sends it to the VrijBRP api", newHandler: actions.NewDeceasementHandler},
	{use: "eerste-inschrijving", short: "Maps a ZGW zaak of a first registration and sends it to the VrijBRP api", newHandler: actions.NewEersteInschrijvingHandler},
	{use: "document", short: "Sends the documents of a ZGW zaak to the VrijBRP dossier", newHandler: actions.NewDocumentHandler},
}

//command returns cobra command with --zaak/-z and a flag per configuration key
func (hc *handlerCommand) command() *cobra.Command {
	var zaakID string
	values := map[string]*string{}

	cmd := &cobra.Command{
		Use:   hc.use,
		Short: hc.short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if zaakID == "" {
				return fmt.Errorf("Please use %s -z {uuid of a zaak}", cmd.CommandPath())
			}

			app, err := newApplication(context.Background(), false)
			if err != nil {
				return err
			}
			defer app.Close()
			app.install()

			result, err := runHandler(context.Background(), hc.newHandler(app.vrijbrp), hc.data(zaakID), configuration(values))
			if err != nil {
				return err
			}

			output, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&zaakID, "zaak", "z", "", "(required) the zaak uuid we should test with")

	keys := make([]string, 0, len(hc.defaults))
	for key := range hc.defaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := new(string)
		values[key] = value
		cmd.Flags().StringVarP(value, key, shorthands[key], hc.defaults[key], "(optional) "+key+" of the handler configuration")
	}

	return cmd
}

//configuration returns flag values, empty values are skipped
func configuration(values map[string]*string) map[string]interface{} {
	result := map[string]interface{}{}
	for key, value := range values {
		if value != nil && *value != "" {
			result[key] = *value
		}
	}
	return result
}

//runHandler returns ErrEmptyResult if the handler has failed (handlers log the reason)
func runHandler(ctx context.Context, handler actions.Handler, data, configuration map[string]interface{}) (map[string]interface{}, error) {
	result, err := handler.Run(ctx, data, configuration)
	if err != nil {
		return nil, fmt.Errorf("[%s] %v", handler.Name(), err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("[%s] %w", handler.Name(), ErrEmptyResult)
	}
	return result, nil
}

func init() {
	zgwToVrijbrpCmd := zgwToVrijbrpCommand.command()
	for _, subcommand := range zgwToVrijbrpSubcommands {
		subcommand.data = zaakSelf
		subcommand.defaults = handlerDefaults(subcommand.newHandler)
		zgwToVrijbrpCmd.AddCommand(subcommand.command())
	}
	rootCmd.AddCommand(zgwToVrijbrpCmd)
}
