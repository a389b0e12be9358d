package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Boluski2/lendsqr-admin/internal/config"
	"github.com/Boluski2/lendsqr-admin/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "lendsqr",
	Short: "Lendsqr admin back office",
	Long: `lendsqr serves the user-list pipeline of the Lendsqr admin dashboard:
generated borrower records, filtering and pagination, status changes and the
local record cache.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logger = logging.NewWithWriter(cfg.Logging, cmd.ErrOrStderr())
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lendsqr %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults to $LENDSQR_CONFIG)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}

func SetVersion(v string) {
	version = v
}

func Execute() error {
	return rootCmd.Execute()
}

func Root() *cobra.Command {
	return rootCmd
}
