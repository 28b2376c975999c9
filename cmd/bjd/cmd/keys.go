package cmd

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"

	"github.com/spf13/cobra"

	"onchainblackjack/internal/fairness"
)

type accountKey struct {
	PubKey  string `json:"pubKey"`
	PrivKey string `json:"privKey"`
}

type vrfKey struct {
	Secret string `json:"secret"`
	PubKey string `json:"pubKey"`
}

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Generate key material",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "account",
			Short: "Generate an ed25519 account key pair",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				pub, priv, err := ed25519.GenerateKey(rand.Reader)
				if err != nil {
					return err
				}
				return printJSON(cmd, accountKey{PubKey: hex.EncodeToString(pub), PrivKey: hex.EncodeToString(priv)})
			},
		},
		&cobra.Command{
			Use:   "vrf",
			Short: "Generate a VRF secret and print its public key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				secret, err := fairness.GenerateSecret()
				if err != nil {
					return err
				}
				vrf, err := fairness.NewVRF(secret)
				if err != nil {
					return err
				}
				return printJSON(cmd, vrfKey{Secret: hex.EncodeToString(secret), PubKey: hex.EncodeToString(vrf.PublicKey())})
			},
		},
	)
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
