package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adda-Baaj/maytapi-sender/internal/app"
	"github.com/Adda-Baaj/maytapi-sender/internal/config"
	"github.com/Adda-Baaj/maytapi-sender/internal/logger"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type sendFlags struct {
	to      string
	textURL string
	encoded string
	caption string
	output  string
}

func newRootCmd() *cobra.Command {
	var f sendFlags
	cmd := &cobra.Command{
		Use:           "maytapi-send",
		Short:         "Send a WhatsApp text message through the Maytapi API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := app.Request{
				To:          f.to,
				TextURL:     flagValue(cmd, "text-url", f.textURL),
				EncodedData: flagValue(cmd, "encoded", f.encoded),
				Caption:     flagValue(cmd, "caption", f.caption),
			}
			return run(cmd, req, f.output)
		},
	}

	cmd.Flags().StringVar(&f.to, "to", "", "recipient phone number with country code")
	cmd.Flags().StringVar(&f.textURL, "text-url", "", "URL of the text content to send")
	cmd.Flags().StringVar(&f.encoded, "encoded", "", "inline encoded content, e.g. a data URI")
	cmd.Flags().StringVar(&f.caption, "caption", "", "optional caption")
	cmd.Flags().StringVarP(&f.output, "output", "o", formatJSON, "response format: json or yaml")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// flagValue returns nil unless the flag was given, so "--caption=" and no
// --caption stay distinct.
func flagValue(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func run(cmd *cobra.Command, req app.Request, output string) error {
	stderr := cmd.ErrOrStderr()

	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrMissingCredentials) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "load config: %v\n", err)
		}
		return err
	}

	log, err := logger.Init(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "init logger: %v\n", err)
		return err
	}
	defer logger.Close()

	logger.DebugObj("sender starting", "config", cfg.Redacted())

	ctx := cmd.Context()
	sender, err := app.NewSender(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize sender", "error", err)
		fmt.Fprintf(stderr, "init sender: %v\n", err)
		return err
	}
	defer func() {
		if err := sender.Close(); err != nil {
			logger.WarnObj("sender close failed", "error", err)
		}
	}()

	resp, err := sender.Send(ctx, req)
	if err != nil {
		fmt.Fprintf(stderr, "Error sending message: %v\n", err)
		return err
	}

	rendered, err := render(resp, output)
	if err != nil {
		fmt.Fprintf(stderr, "render response: %v\n", err)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Message sent: %s\n", rendered)
	return nil
}
