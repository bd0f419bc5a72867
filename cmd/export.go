package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/area-risk/internal/model"
	"github.com/sells-group/area-risk/internal/pipeline"
)

var (
	exportFormat string
	exportTable  string
	exportLevel  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the classified area or city table using the persisted model",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		state, err := pipeline.Classify(cmd.Context(), pipelineOptions(cfg), st)
		if err != nil {
			return err
		}
		if exportLevel != "" {
			level, err := model.ParseRiskLevel(exportLevel)
			if err != nil {
				return err
			}
			state = filterLevel(state, level)
		}
		return writeTable(cmd.OutOrStdout(), state, exportTable, exportFormat)
	},
}

// exportArea is the YAML/JSON row for the areas table.
type exportArea struct {
	City           string          `json:"City" yaml:"city"`
	Area           string          `json:"Area" yaml:"area"`
	Latitude       float64         `json:"Latitude" yaml:"latitude"`
	Longitude      float64         `json:"Longitude" yaml:"longitude"`
	CrimeFrequency float64         `json:"Crime Frequency" yaml:"crime_frequency"`
	RiskLevel      model.RiskLevel `json:"Risk Level" yaml:"risk_level"`
}

type exportCity struct {
	City               string          `json:"City" yaml:"city"`
	PredictedRiskLevel model.RiskLevel `json:"Predicted Risk Level" yaml:"predicted_risk_level"`
}

// filterLevel keeps only the areas and cities classified as level.
func filterLevel(state *pipeline.State, level model.RiskLevel) *pipeline.State {
	out := &pipeline.State{Model: state.Model}
	for _, a := range state.Areas {
		if a.RiskLevel == level {
			out.Areas = append(out.Areas, a)
		}
	}
	for _, c := range state.Cities {
		if c.PredictedRiskLevel == level {
			out.Cities = append(out.Cities, c)
		}
	}
	return out
}

func writeTable(w io.Writer, state *pipeline.State, table, format string) error {
	var rows any
	switch table {
	case "areas":
		out := make([]exportArea, len(state.Areas))
		for i, a := range state.Areas {
			out[i] = exportArea(a)
		}
		rows = out
	case "cities":
		out := make([]exportCity, len(state.Cities))
		for i, c := range state.Cities {
			out[i] = exportCity(c)
		}
		rows = out
	default:
		return eris.Errorf("unknown table %q (want areas or cities)", table)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	default:
		return eris.Errorf("unknown format %q (want json or yaml)", format)
	}
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json or yaml")
	exportCmd.Flags().StringVar(&exportTable, "table", "areas", "table to export: areas or cities")
	exportCmd.Flags().StringVar(&exportLevel, "level", "", "only rows at this risk level (low, medium, high)")
	rootCmd.AddCommand(exportCmd)
}
