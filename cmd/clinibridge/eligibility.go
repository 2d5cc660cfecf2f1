// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/clinibridge/internal/trials"
	"github.com/pdiddy/clinibridge/pkg/types"
)

var eligibilityCmd = &cobra.Command{
	Use:   "eligibility <nct-id>",
	Short: "Explain a trial's eligibility criteria for a patient",
	Long: `Eligibility fetches one trial's eligibility criteria, rewrites each
criterion in plain English, and classifies it against the patient profile
as met, not met, or unknown. Without a working AI backend the criteria are
shown as written, classified unknown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nctID := args[0]
		profilePath, _ := cmd.Flags().GetString("profile")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg := loadConfig()
		log := newLogger(zerolog.WarnLevel)

		profile := types.PatientProfile{}
		if profilePath != "" {
			p, err := trials.LoadProfile(profilePath)
			if err != nil {
				return err
			}
			profile = *p
		}

		st, err := openStore(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("store unavailable, criteria will not be cached")
			st = nil
		} else {
			defer st.Close()
		}

		explainer := buildExplainer(cfg, st, log)
		breakdown := explainer.Explain(cmd.Context(), nctID, profile)

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(breakdown)
		}

		printBreakdown(breakdown)
		return nil
	},
}

func printBreakdown(b *types.EligibilityBreakdown) {
	fmt.Printf("Eligibility for %s\n\n", b.NCTID)

	printCriteria("Inclusion criteria", b.InclusionCriteria)
	printCriteria("Exclusion criteria", b.ExclusionCriteria)

	if len(b.PreparationChecklist) > 0 {
		fmt.Println("Preparation checklist:")
		for _, item := range b.PreparationChecklist {
			fmt.Printf("  - %s\n", item)
		}
		fmt.Println()
	}

	if b.Meta.Notes != "" {
		fmt.Printf("Note: %s\n", b.Meta.Notes)
	}
	fmt.Println(b.Disclaimer)
}

func printCriteria(heading string, cs []types.EligibilityCriterion) {
	if len(cs) == 0 {
		return
	}
	fmt.Printf("%s:\n", heading)
	for _, c := range cs {
		fmt.Printf("  [%s] %s\n", c.Status, c.Plain)
		if c.Reason != "" {
			fmt.Printf("          %s\n", c.Reason)
		}
	}
	fmt.Println()
}

func init() {
	eligibilityCmd.Flags().String("profile", "", "patient profile YAML file")
	eligibilityCmd.Flags().Bool("json", false, "output the breakdown as JSON")

	rootCmd.AddCommand(eligibilityCmd)
}
