package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dao_gov/auth/ethsig"
)

func keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Generate keys and sign call envelopes for ethsig auth",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Generate a secp256k1 key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kp, err := ethsig.GenerateKey()
			if err != nil {
				return err
			}
			return printJSON(cmd, object{}.
				str("address", kp.Address.String()).
				str("public_key", kp.PublicKey).
				str("private_key", kp.PrivateKey))
		},
	})

	var (
		keyHex   string
		op       string
		args     string
		issuedAt uint64
		outPath  string
	)
	sign := &cobra.Command{
		Use:   "sign",
		Short: "Sign an envelope for one call",
		Long: `Sign an envelope for one call. --args must be the exact json the
command will send, a mismatching envelope is rejected with the expected value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if keyHex == "" {
				keyHex = os.Getenv("DAOGOV_PRIVATE_KEY")
			}
			key, err := ethsig.ParsePrivateKey(keyHex)
			if err != nil {
				return err
			}
			if op == "" {
				return fmt.Errorf("--op is required")
			}
			if issuedAt == 0 {
				issuedAt = uint64(time.Now().Unix())
			}
			env, err := ethsig.Sign(key, op, args, issuedAt)
			if err != nil {
				return err
			}
			data, err := ethsig.MarshalEnvelope(env)
			if err != nil {
				return err
			}
			if outPath != "" {
				return os.WriteFile(outPath, data, 0o600)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	sign.Flags().StringVar(&keyHex, "key", "", "hex private key (env DAOGOV_PRIVATE_KEY)")
	sign.Flags().StringVar(&op, "op", "", "operation name, e.g. cast_vote")
	sign.Flags().StringVar(&args, "args", "", "call arguments as json")
	sign.Flags().Uint64Var(&issuedAt, "issued-at", 0, "unix seconds, defaults to now")
	sign.Flags().StringVarP(&outPath, "out", "o", "", "write the envelope to a file instead of stdout")
	cmd.AddCommand(sign)
	return cmd
}
