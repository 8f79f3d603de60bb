package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gruby/internal/app"
	"gruby/internal/database"
	"gruby/internal/middleware"
	"gruby/internal/notify"
)

var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create the secondary indexes on every collection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			if err := database.EnsureIndexes(ctx, a.DB); err != nil {
				return err
			}
			a.Logger.Info("indexes ensured", zap.String("db", a.Config.MongoDB))
			return nil
		})
	},
}

var backfillCmd = &cobra.Command{
	Use:   "backfill-embeddings",
	Short: "Embed approved content that has no stored vector yet",
	Args:  cobra.NoArgs,
	RunE:  runBackfill,
}

var sendNotificationCmd = &cobra.Command{
	Use:   "send-notification",
	Short: "Send a push notification and record it like the admin console does",
	Args:  cobra.NoArgs,
	RunE:  runSendNotification,
}

var adminTokenCmd = &cobra.Command{
	Use:   "admin-token [subject]",
	Short: "Sign an admin console bearer token",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminToken,
}

func init() {
	backfillCmd.Flags().Int("batch-size", 100, "documents embedded per request")

	sendNotificationCmd.Flags().String("title", "", "notification title")
	sendNotificationCmd.Flags().String("body", "", "notification body")
	sendNotificationCmd.Flags().String("audience", "all", "all, home_cooks or users")
	sendNotificationCmd.Flags().StringSlice("user", nil, "user id for audience users (repeatable)")
	sendNotificationCmd.Flags().String("data", "", "JSON object passed to the app with the notification")
	sendNotificationCmd.Flags().String("created-by", "grubyctl", "recorded sender")
	_ = sendNotificationCmd.MarkFlagRequired("title")
	_ = sendNotificationCmd.MarkFlagRequired("body")

	adminTokenCmd.Flags().Duration("ttl", 12*time.Hour, "token lifetime")

	rootCmd.AddCommand(ensureIndexesCmd, backfillCmd, sendNotificationCmd, adminTokenCmd)
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	batch, _ := cmd.Flags().GetInt("batch-size")
	if batch < 1 {
		return errors.New("batch-size must be positive")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		if !a.Config.EmbeddingsEnabled() {
			return errors.New("OPENAI_API_KEY is not set")
		}

		start := time.Now()
		stats, err := a.Search.Backfill(ctx, batch)
		a.Logger.Info("backfill finished",
			zap.Int("scanned", stats.Scanned),
			zap.Int("indexed", stats.Indexed),
			zap.Int("skipped", stats.Skipped),
			zap.Duration("took", time.Since(start)),
		)
		if err != nil {
			return fmt.Errorf("backfill stopped after %d documents: %w", stats.Scanned, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "scanned %d, indexed %d, skipped %d\n", stats.Scanned, stats.Indexed, stats.Skipped)
		return nil
	})
}

func runSendNotification(cmd *cobra.Command, _ []string) error {
	draft := notify.Draft{}
	draft.Title, _ = cmd.Flags().GetString("title")
	draft.Body, _ = cmd.Flags().GetString("body")
	draft.Audience, _ = cmd.Flags().GetString("audience")
	draft.UserIDs, _ = cmd.Flags().GetStringSlice("user")
	draft.CreatedBy, _ = cmd.Flags().GetString("created-by")

	if raw, _ := cmd.Flags().GetString("data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &draft.Data); err != nil {
			return fmt.Errorf("--data must be a JSON object: %w", err)
		}
	}

	return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
		n, err := a.Notify.Send(ctx, draft)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(n, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	})
}

func runAdminToken(cmd *cobra.Command, args []string) error {
	ttl, _ := cmd.Flags().GetDuration("ttl")

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.AdminJWTSecret == "" {
		return errors.New("ADMIN_JWT_SECRET is not set")
	}

	token, err := middleware.NewAdminAuth(cfg.AdminJWTSecret, cfg.AdminJWTIssuer).Issue(args[0], ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
