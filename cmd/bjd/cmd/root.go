package cmd

import (
	"github.com/spf13/cobra"

	"onchainblackjack/internal/blackjack"
	"onchainblackjack/internal/config"
)

// NewRootCmd creates the bjd root command. It is called once in main.
func NewRootCmd() *cobra.Command {
	v := config.New()

	rootCmd := &cobra.Command{
		Use:           "bjd",
		Short:         "On-chain blackjack ABCI daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
			return config.BindFlags(v, cmd.Flags())
		},
	}
	rootCmd.PersistentFlags().String(config.KeyHome, config.DefaultDir, "node home directory")
	rootCmd.PersistentFlags().String(config.KeyLogLevel, "info", "log level, or module filter like x/blackjack:debug,*:info")
	rootCmd.PersistentFlags().String(config.KeyLogFormat, "plain", "log format (plain|json)")

	rootCmd.AddCommand(
		startCmd(v),
		initCmd(v),
		keysCmd(),
		txCmd(),
	)
	return rootCmd
}

// houseFlags are shared by init and start so either can set genesis values.
func houseFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	defaults := blackjack.DefaultParams()
	f.String(config.KeyOwner, "", "house owner account")
	f.String(config.KeyOwnerPubKey, "", "house owner ed25519 public key (hex)")
	f.String(config.KeyHouseBalance, "0", "initial house balance")
	f.String(config.KeyRequiredBet, defaults.RequiredBet.String(), "exact stake required to start a game")
	f.String(config.KeyWinningPayout, defaults.WinningPayout.String(), "total returned to a winning player")
}
