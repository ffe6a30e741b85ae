package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/dvphoto-bot/pkg/adapters"
	"github.com/shouni/dvphoto-bot/pkg/domain"
)

func newProcessCmd(envFile *string) *cobra.Command {
	var (
		output string
		b64    bool
	)
	cmd := &cobra.Command{
		Use:   "process <input>",
		Short: "Correct a photo (local path, gs:// or s3://) and write the 600x600 PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *envFile, false, args[0], output)
			if err != nil {
				return err
			}
			defer a.Close()
			gen, _, err := newGenerator(cmd.Context(), a)
			if err != nil {
				return err
			}
			p, err := a.newPipeline(gen)
			if err != nil {
				return err
			}
			if output == "" {
				output = a.catalog.Output.FileName
			}

			outcome := p.Process(cmd.Context(),
				domain.PhotoRequest{Source: domain.FileHandle(args[0]), FileName: args[0]},
				adapters.StorageFetcher{Reader: a.storage.reader, Base64: b64},
				adapters.StorageDeliverer{Writer: a.storage.writer, Path: output, Base64: b64},
			)
			if !outcome.Succeeded() {
				return fmt.Errorf("%s (%s): %w", outcome.Message, outcome.Kind, outcome.Err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", outcome.Message, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path or gs:// / s3:// URI (default: dv_lottery_photo_600x600.png)")
	cmd.Flags().BoolVar(&b64, "base64", false, "read the input and write the output as base64 text")
	return cmd
}
