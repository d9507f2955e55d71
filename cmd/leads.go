package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sitescout/sitescout/internal/leads"
	"github.com/sitescout/sitescout/internal/report"
)

var (
	leadsInput string
	leadsJSON  bool
	leadsLimit int
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Score and report sales leads",
}

var leadsScoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score leads from a YAML or JSON file",
	Long:  "Reads leads with velocity, authority, and impact counters (each 0-100) from --input, computes the weighted score, and persists the ranking.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		inputs, err := loadLeadInputs(leadsInput)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		ranked, err := leads.ScoreAndPersist(ctx, st, inputs)
		if err != nil {
			return eris.Wrap(err, "score leads")
		}

		if leadsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ranked)
		}
		report.LeadsTable(os.Stdout, ranked)
		return nil
	},
}

var leadsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show previously scored leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		ranked, err := st.ListLeads(ctx, leadsLimit)
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		if leadsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ranked)
		}
		report.LeadsTable(os.Stdout, ranked)
		return nil
	},
}

// loadLeadInputs reads lead inputs from a YAML or JSON file, keyed off the
// extension. Both formats accept either a bare list or {"leads": [...]}.
func loadLeadInputs(path string) ([]leads.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}

	var wrapper struct {
		Leads []leads.Input `json:"leads" yaml:"leads"`
	}
	var list []leads.Input

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, &wrapper); err != nil || len(wrapper.Leads) == 0 {
			if err := json.Unmarshal(data, &list); err != nil {
				return nil, eris.Wrapf(err, "parse %s", path)
			}
			wrapper.Leads = list
		}
	} else {
		if err := yaml.Unmarshal(data, &wrapper); err != nil || len(wrapper.Leads) == 0 {
			if err := yaml.Unmarshal(data, &list); err != nil {
				return nil, eris.Wrapf(err, "parse %s", path)
			}
			wrapper.Leads = list
		}
	}

	if len(wrapper.Leads) == 0 {
		return nil, eris.Errorf("no leads in %s", path)
	}
	return wrapper.Leads, nil
}

func init() {
	leadsScoreCmd.Flags().StringVar(&leadsInput, "input", "", "leads file, .yaml or .json (required)")
	_ = leadsScoreCmd.MarkFlagRequired("input")
	leadsScoreCmd.Flags().BoolVar(&leadsJSON, "json", false, "output as JSON")

	leadsReportCmd.Flags().IntVar(&leadsLimit, "limit", 50, "max leads to show")
	leadsReportCmd.Flags().BoolVar(&leadsJSON, "json", false, "output as JSON")

	leadsCmd.AddCommand(leadsScoreCmd)
	leadsCmd.AddCommand(leadsReportCmd)
	rootCmd.AddCommand(leadsCmd)
}
