package main

import (
	"fmt"
	"io"
	"os"

	"nightlies/internal/config"
	"nightlies/internal/model"
	"nightlies/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPublishCmd(cfg *config.Config) *cobra.Command {
	var current bool

	cmd := &cobra.Command{
		Use:   "publish [key] [file]",
		Short: "Upload an artifact into the store",
		Long: "Writes FILE under KEY. With --current, CURRENT is then pointed at KEY.\n" +
			"The web server itself never writes; this stands in for the release pipeline.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, path := args[0], args[1]
			if key == model.CurrentKey {
				return fmt.Errorf("refusing to overwrite %s as an asset, use --current", model.CurrentKey)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			st, err := store.Open(cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			if err := st.Put(ctx, key, data); err != nil {
				return err
			}
			logger.Info("Asset published", zap.String("key", key), zap.Int("bytes", len(data)))

			if current {
				if err := st.Put(ctx, model.CurrentKey, []byte(key)); err != nil {
					return fmt.Errorf("update %s: %w", model.CurrentKey, err)
				}
				logger.Info("CURRENT updated", zap.String("key", key))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&current, "current", false, "Point CURRENT at the published key")
	return cmd
}

func newGetCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print one stored value to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			value, err := st.Get(cmd.Context(), args[0], model.KindStream)
			if err != nil {
				return err
			}
			defer value.Body.Close()

			_, err = io.Copy(cmd.OutOrStdout(), value.Body)
			return err
		},
	}
}
