package commands

// Command to render the chart and post it to Telegram
// With --skip-render it waits for a chart produced elsewhere instead.

import (
	"fmt"
	"time"

	"grafica-energia/internal/dataset"
	"grafica-energia/internal/infra/fs"
	logging "grafica-energia/internal/infra/log"
	"grafica-energia/internal/notify"
	"grafica-energia/internal/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	skipRender bool
	waitFor    time.Duration
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Render the chart and send it to the configured Telegram chat",
	Long: `Render the energy chart and upload it as a photo to telegram.chat_id.
Requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID (or the matching config keys).`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().BoolVar(&skipRender, "skip-render", false, "Send the existing chart instead of rendering it")
	publishCmd.Flags().DurationVar(&waitFor, "wait", 0, "With --skip-render, how long to wait for the chart file to appear")
	publishCmd.Flags().String("telegram.bot_token", "", "Telegram bot token (env: TELEGRAM_BOT_TOKEN)")
	publishCmd.Flags().String("telegram.chat_id", "", "Telegram chat id (env: TELEGRAM_CHAT_ID)")
}

func runPublish(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateTelegram(); err != nil {
		return err
	}
	ctx := cmd.Context()

	var summary dataset.Summary
	if skipRender {
		if err := fs.WaitForFile(ctx, cfg.Output.Path, waitFor); err != nil {
			return fmt.Errorf("chart not available: %w", err)
		}
		ds, err := dataset.Load(cfg.Input.Path)
		if err != nil {
			logging.LogWarn("Sending chart without data summary", zap.Error(err))
		} else {
			summary = dataset.Summarize(ds)
		}
	} else {
		res, err := pipeline.Run(ctx, cfg)
		if err != nil {
			return err
		}
		summary = res.Summary
	}

	publisher, err := notify.NewPublisher(cfg.Telegram)
	if err != nil {
		return err
	}

	caption := ""
	if summary.Rows > 0 {
		caption = notify.Caption(summary)
	}
	return publisher.SendChart(ctx, cfg.Output.Path, caption)
}
