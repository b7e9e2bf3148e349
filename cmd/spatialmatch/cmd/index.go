package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carmenstack/spatialmatch/internal/indexer"
)

func newIndexCmd() *cobra.Command {
	var gridPath, dictPath string

	cmd := &cobra.Command{
		Use:   "index <features.json>",
		Short: "Ingest a batch of features into the grid store and word-frequency dictionary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args[0], gridPath, dictPath)
		},
	}

	cmd.Flags().StringVar(&gridPath, "grid", "spatialmatch.grid", "Path to the live grid store")
	cmd.Flags().StringVar(&dictPath, "dict", "spatialmatch.dict.sqlite", "Path to the word-frequency dictionary")
	return cmd
}

func runIndex(cmd *cobra.Command, featuresPath, gridPath, dictPath string) error {
	data, err := os.ReadFile(featuresPath)
	if err != nil {
		return fmt.Errorf("read features: %w", err)
	}
	var features []indexer.Feature
	if err := json.Unmarshal(data, &features); err != nil {
		return fmt.Errorf("parse features: %w", err)
	}

	w, err := indexer.NewWriter(gridPath, dictPath)
	if err != nil {
		return fmt.Errorf("open writer: %w", err)
	}
	defer w.Close()

	if err := w.StartWriting(); err != nil {
		return fmt.Errorf("acquire write lock: %w", err)
	}
	defer w.StopWriting()

	for start := 0; start < len(features); start += indexer.MaxBatchSize {
		end := start + indexer.MaxBatchSize
		if end > len(features) {
			end = len(features)
		}
		if err := w.WriteBatch(features[start:end]); err != nil {
			return fmt.Errorf("write batch [%d:%d]: %w", start, end, err)
		}
	}

	if err := w.PackAndSwap(); err != nil {
		return fmt.Errorf("pack and swap: %w", err)
	}
	if err := w.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d features into %s\n", len(features), gridPath)
	return nil
}
