package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "v0.2.0"

func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "tictactoe",
		Short: "Serves an n×n tic-tac-toe game to the browser",
		Args:  cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// global flags
	root.PersistentFlags().StringP("config", "c", "", "Path to the YAML config file")

	root.SetVersionTemplate("{{.Version}}\n")
	root.Version = Version

	root.AddCommand(Serve())
	root.AddCommand(VersionCmd())

	return root
}

func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the server version",
		Args:  cobra.NoArgs,

		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(Version)
		},
	}
}
