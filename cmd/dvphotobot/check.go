package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(envFile *string) *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify configuration, reference sample and prompt catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := loadApp(cmd.Context(), *envFile, !local)
			if err != nil {
				fmt.Fprintf(out, "❌ %v\n", err)
				return err
			}
			defer a.Close()
			if _, _, err := newGenerator(cmd.Context(), a); err != nil {
				fmt.Fprintf(out, "❌ %v\n", err)
				return err
			}

			if !local {
				fmt.Fprintln(out, "✅ TELEGRAM_BOT_TOKEN found")
			}
			fmt.Fprintln(out, "✅ GEMINI_API_KEY found")
			fmt.Fprintf(out, "✅ Sample image: %s (%s, %d bytes)\n", a.sample.Origin, a.sample.MIMEType, len(a.sample.Data))
			fmt.Fprintf(out, "✅ Prompt catalog: %s\n", a.catalog.Version)
			fmt.Fprintf(out, "✅ Model: %s\n", a.cfg.GeminiModel)
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "skip the Telegram token check (local processing only)")
	return cmd
}
