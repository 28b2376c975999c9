package cmd

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"onchainblackjack/internal/app"
	"onchainblackjack/internal/codec"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Transaction helpers",
	}
	cmd.AddCommand(txSignCmd())
	return cmd
}

func txSignCmd() *cobra.Command {
	var (
		signer string
		nonce  uint64
		key    string
	)
	cmd := &cobra.Command{
		Use:   "sign <type> <value-json>",
		Short: "Sign a tx and print the envelope ready for broadcast_tx",
		Long: "Sign a tx and print the JSON envelope. Types: " + strings.Join([]string{
			codec.TypeBankMint, codec.TypeBankSend, codec.TypeAuthRegisterAccount,
			codec.TypeHouseFund, codec.TypeHouseWithdraw,
			codec.TypeBlackjackStart, codec.TypeBlackjackHit, codec.TypeBlackjackStand,
		}, ", "),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !json.Valid([]byte(args[1])) {
				return fmt.Errorf("value is not valid json")
			}
			priv, err := hex.DecodeString(strings.TrimPrefix(key, "0x"))
			if err != nil || len(priv) != ed25519.PrivateKeySize {
				return fmt.Errorf("--key must be a %d-byte hex ed25519 private key", ed25519.PrivateKeySize)
			}
			if signer == "" || nonce == 0 {
				return fmt.Errorf("--signer and a positive --nonce are required")
			}
			env := codec.TxEnvelope{Type: args[0], Value: json.RawMessage(args[1])}
			app.SignTx(&env, signer, nonce, ed25519.PrivateKey(priv))
			bz, err := json.Marshal(env)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&signer, "signer", "", "signing account")
	f.Uint64Var(&nonce, "nonce", 0, "tx nonce; must exceed the signer's last nonce")
	f.StringVar(&key, "key", "", "ed25519 private key (hex)")
	return cmd
}
