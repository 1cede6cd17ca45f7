package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"daily-quiz-bot/internal/app"
	"daily-quiz-bot/internal/infra/config"
	"daily-quiz-bot/internal/infra/db"
	logx "daily-quiz-bot/internal/infra/log"
)

func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Parse()
	if err != nil {
		return fmt.Errorf("конфиг: %w", err)
	}
	logger := logx.NewLogger(cfg.AppEnv, cfg.LogFormat)
	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить схему БД",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Parse()
			if err != nil {
				return fmt.Errorf("конфиг: %w", err)
			}
			pool, err := db.Connect(cmd.Context(), cfg.PGDSN)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := db.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Println("схема применена")
			return nil
		},
	}
}

func sendDailyCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "send-daily",
		Short: "Разослать вопрос дня сейчас",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if force {
					report, ok, err := a.Delivery.Run(ctx)
					if err != nil {
						return err
					}
					if !ok {
						fmt.Println("нет активных вопросов")
						return nil
					}
					return printJSON(report)
				}
				ran, err := a.Scheduler.RunToday(ctx, time.Now())
				if err != nil {
					return err
				}
				if !ran {
					fmt.Println("сегодня рассылка уже выполнялась, используйте --force")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Игнорировать отметку о сегодняшней рассылке")
	return cmd
}

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send [question-id]",
		Short: "Разослать конкретный вопрос",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("некорректный id %q", args[0])
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				report, err := a.Delivery.SendQuestion(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(report)
			})
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Показать статистику ответов и пожертвований",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				responses, err := a.Stats.Responses(ctx)
				if err != nil {
					return err
				}
				donations, err := a.Stats.Donations(ctx)
				if err != nil {
					return err
				}
				return printJSON(map[string]any{"responses": responses, "donations": donations})
			})
		},
	}
}
