package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ebetancourt/luna/internal/integration"
	"github.com/ebetancourt/luna/pkg/models"
)

var connectCmd = &cobra.Command{
	Use:   "connect <provider>",
	Short: "Connect a task or calendar provider",
	Long: `Authorize Luna against a third-party provider over OAuth2.

Providers: todoist (tasks for the weekly review), google (calendar events).
The authorization URL is printed; open it in a browser, approve access, and
Luna stores the token locally. Tokens refresh automatically afterwards.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{integration.ProviderTodoist, integration.ProviderGoogle},
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tokens == nil {
			return fmt.Errorf("token store not initialized")
		}

		provider := args[0]
		var providerCfg models.OAuthProviderConfig
		switch provider {
		case integration.ProviderTodoist:
			providerCfg = Cfg.Integrations.Todoist
		case integration.ProviderGoogle:
			providerCfg = Cfg.Integrations.Google
		default:
			return fmt.Errorf("unknown provider %q (use todoist or google)", provider)
		}

		err := integration.Authorize(cmd.Context(), provider, providerCfg, Tokens, func(url string) {
			fmt.Printf("Open this URL in your browser to authorize:\n\n  %s\n\nWaiting for the callback...\n", url)
		})
		if err != nil {
			return err
		}

		fmt.Printf("Connected %s.\n", provider)
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:       "disconnect <provider>",
	Short:     "Remove a provider's stored token",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{integration.ProviderTodoist, integration.ProviderGoogle},
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tokens == nil {
			return fmt.Errorf("token store not initialized")
		}
		if err := Tokens.DeleteToken(args[0]); err != nil {
			return err
		}
		fmt.Printf("Disconnected %s.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
}
