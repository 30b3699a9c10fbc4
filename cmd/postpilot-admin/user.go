package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/postpilot/internal/application"
	"github.com/ericfisherdev/postpilot/internal/bootstrap"
	"github.com/ericfisherdev/postpilot/internal/config"
	"github.com/ericfisherdev/postpilot/internal/domain/model"
	"github.com/ericfisherdev/postpilot/internal/domain/port/driven"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Inspect or change a user's plan",
	}

	cmd.AddCommand(userShowCmd())
	cmd.AddCommand(userGrantCmd())

	return cmd
}

func userShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <email>",
		Short: "Print a user's plan and credits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(users driven.UserStore) error {
				u, err := users.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printUser(cmd.OutOrStdout(), u)
			})
		},
	}
}

func userGrantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant <email> <plan>",
		Short: "Move a user onto a plan with its full credit allotment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := model.ParsePlan(args[1])
			if err != nil {
				return err
			}

			return withStore(cmd.Context(), func(users driven.UserStore) error {
				u, err := application.GrantPlan(cmd.Context(), users, args[0], plan, time.Now())
				if err != nil {
					return err
				}
				return printUser(cmd.OutOrStdout(), u)
			})
		},
	}
}

// withStore opens the configured user store, runs fn and closes the store.
func withStore(ctx context.Context, fn func(users driven.UserStore) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := config.LoadEnvFile(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users, closeStore, err := bootstrap.OpenUserStore(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	return fn(users)
}

type userOutput struct {
	Email         string `json:"email"`
	Plan          string `json:"plan"`
	Credits       int    `json:"credits"`
	LastPaymentAt string `json:"lastPaymentAt,omitempty"`
}

func printUser(w io.Writer, u model.User) error {
	out := userOutput{Email: u.ID, Plan: string(u.Plan), Credits: u.Credits}
	if u.LastPaymentAt != nil {
		out.LastPaymentAt = u.LastPaymentAt.Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
