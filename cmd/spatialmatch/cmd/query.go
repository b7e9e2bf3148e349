package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carmenstack/spatialmatch/internal/coalesce"
	"github.com/carmenstack/spatialmatch/internal/coalescefii"
	"github.com/carmenstack/spatialmatch/internal/config"
	"github.com/carmenstack/spatialmatch/internal/queryfile"
	"github.com/carmenstack/spatialmatch/internal/spatialmatch"
)

func newQueryCmd() *cobra.Command {
	var nativeLib string

	cmd := &cobra.Command{
		Use:   "query <fixture.json>",
		Short: "Run the spatialmatch pipeline over a phrasematch fixture and print ranked results as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := runQuery(cmd, args[0], nativeLib)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&nativeLib, "native-lib", "", "Path to a native coalesce engine shared library (probe-only; falls back to the reference coalescer)")
	return cmd
}

func buildEngine(nativeLib string, grids coalesce.GridRefs) (*spatialmatch.Engine, error) {
	cfg := config.Default()
	if nativeLib != "" {
		cfg.NativeLibPath = nativeLib
	}
	coalescer, err := coalescefii.NewPuregoCoalescer(cfg.NativeLibPath, cfg.NativeProbeSymbol)
	if err != nil {
		return nil, fmt.Errorf("build coalescer: %w", err)
	}
	engine, err := spatialmatch.New(coalescer, grids, cfg.TileCacheSize, "")
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	engine.Concurrency = cfg.CoalesceConcurrency
	return engine, nil
}

func runQuery(cmd *cobra.Command, fixturePath, nativeLib string) (interface{}, error) {
	req, err := queryfile.Load(fixturePath)
	if err != nil {
		return nil, err
	}
	grids, err := req.NewGridRefResolver()
	if err != nil {
		return nil, err
	}

	engine, err := buildEngine(nativeLib, grids)
	if err != nil {
		return nil, err
	}

	out, err := engine.Run(cmd.Context(), req.Tokens, req.ToPhrasematchResults(), req.ToOptions())
	if err != nil {
		return nil, err
	}
	return out, nil
}
