package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"onchainblackjack/internal/config"
	"onchainblackjack/internal/fairness"
)

func initCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config to <home>/config/bjd.toml, generating a VRF secret if none is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if v.GetString(config.KeyFairnessSecret) == "" {
				secret, err := fairness.GenerateSecret()
				if err != nil {
					return err
				}
				v.Set(config.KeyFairnessSecret, hex.EncodeToString(secret))
			}
			secret, err := hex.DecodeString(v.GetString(config.KeyFairnessSecret))
			if err != nil {
				return fmt.Errorf("%s: %w", config.KeyFairnessSecret, err)
			}
			vrf, err := fairness.NewVRF(secret)
			if err != nil {
				return err
			}

			p, err := config.WriteDefault(v, v.GetString(config.KeyHome))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wrote %s\n", p)
			fmt.Fprintf(out, "vrf pubkey: %x\n", vrf.PublicKey())
			return nil
		},
	}
	cmd.Flags().String(config.KeyFairnessSecret, "", "VRF secret (hex); generated when empty")
	houseFlags(cmd)
	return cmd
}
