package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/area-risk/internal/cluster"
	"github.com/sells-group/area-risk/internal/store"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <frequency>...",
	Short: "Classify crime frequencies with the persisted model",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseFrequencies(args)
		if err != nil {
			return err
		}

		st, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		m, err := st.Load(cmd.Context())
		if errors.Is(err, store.ErrModelNotFound) {
			return eris.New("no persisted model; run train first")
		}
		if err != nil {
			return err
		}

		printLevels(cmd.OutOrStdout(), m, values)
		return nil
	},
}

func parseFrequencies(args []string) ([]float64, error) {
	values := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "parse frequency %q", a)
		}
		if v < 0 {
			return nil, eris.Errorf("frequency %q must not be negative", a)
		}
		values[i] = v
	}
	return values, nil
}

func printLevels(w io.Writer, m *cluster.Model, values []float64) {
	for _, v := range values {
		fmt.Fprintf(w, "%g\t%s\n", v, m.Predict(v))
	}
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
