package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/postpilot/internal/application"
	"github.com/ericfisherdev/postpilot/internal/config"
)

func signatureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signature <order_id> <payment_id>",
		Short: "Print the expected checkout callback signature",
		Long: `Computes the hex HMAC-SHA256 of "<order_id>|<payment_id>" keyed with
RAZORPAY_KEY_SECRET (or --secret), as sent by the checkout widget.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, _ := cmd.Flags().GetString("secret")
			if secret == "" {
				if _, err := config.LoadEnvFile(); err != nil {
					return err
				}
				secret = os.Getenv("RAZORPAY_KEY_SECRET")
			}
			if secret == "" {
				return errors.New("no secret: set RAZORPAY_KEY_SECRET or pass --secret")
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), application.PaymentSignature(args[0], args[1], secret))
			return err
		},
	}

	cmd.Flags().StringP("secret", "s", "", "Gateway key secret (defaults to RAZORPAY_KEY_SECRET)")

	return cmd
}
