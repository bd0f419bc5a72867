package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/area-risk/internal/model"
	"github.com/sells-group/area-risk/internal/pipeline"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the risk model from the dataset and persist it",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := train(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		zap.L().Info("model trained",
			zap.String("model_id", state.Model.ID),
			zap.Float64s("centroids", state.Model.Centroids),
			zap.Float64("inertia", state.Model.Inertia),
			zap.String("driver", cfg.Model.Driver),
		)
		printSummary(cmd.OutOrStdout(), state)
		return nil
	},
}

// printSummary writes the centroids and the number of areas per level.
func printSummary(w io.Writer, state *pipeline.State) {
	fmt.Fprintf(w, "model %s: %d areas, %d cities\n", state.Model.ID, len(state.Areas), len(state.Cities))
	for i, c := range state.Model.Centroids {
		fmt.Fprintf(w, "centroid %d: %g -> %s\n", i, c, state.Model.Levels[i])
	}
	counts := state.LevelCounts()
	for _, lvl := range model.RiskLevels {
		fmt.Fprintf(w, "%s: %d\n", lvl, counts[lvl])
	}
}

func init() {
	rootCmd.AddCommand(trainCmd)
}
