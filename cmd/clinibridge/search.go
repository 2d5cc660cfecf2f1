// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/clinibridge/internal/trials"
	"github.com/pdiddy/clinibridge/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search ClinicalTrials.gov for recruiting trials",
	Long: `Search queries ClinicalTrials.gov for recruiting trials matching a
condition (plus optional synonyms), optionally filtered by location.
With --profile and --score, each result is scored against the patient
profile using the configured AI backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		condition, _ := cmd.Flags().GetString("condition")
		synonyms, _ := cmd.Flags().GetStringSlice("synonyms")
		location, _ := cmd.Flags().GetString("location")
		profilePath, _ := cmd.Flags().GetString("profile")
		score, _ := cmd.Flags().GetBool("score")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg := loadConfig()
		log := newLogger(zerolog.WarnLevel)
		ctx := cmd.Context()

		var profile *types.PatientProfile
		if profilePath != "" {
			p, err := trials.LoadProfile(profilePath)
			if err != nil {
				return err
			}
			profile = p
			if condition == "" {
				condition = p.Condition
			}
			if location == "" {
				location = p.Location
			}
		}
		if condition == "" {
			return fmt.Errorf("a condition is required (--condition or --profile)")
		}

		searcher := buildSearcher(cfg, log)
		out := searcher.Search(ctx, trials.Request{
			Condition: condition,
			Synonyms:  synonyms,
			Location:  location,
		})

		if out.Err == "" && score && profile != nil {
			out.Trials = buildScorer(cfg, log).ScoreTrials(ctx, out.Trials, *profile)
		}

		if out.Err == "" && profile != nil {
			if st, err := openStore(cfg); err == nil {
				if _, logErr := st.LogSearch(ctx, *profile, out.Trials); logErr != nil {
					log.Warn().Err(logErr).Msg("search audit log failed")
				}
				st.Close()
			} else {
				log.Warn().Err(err).Msg("store unavailable, search not logged")
			}
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		if out.Err != "" {
			fmt.Fprintln(os.Stderr, out.Err)
			return nil
		}
		printTrials(out.Trials)
		return nil
	},
}

func printTrials(ts []types.TrialSummary) {
	if len(ts) == 0 {
		fmt.Println("No recruiting trials found.")
		return
	}
	for i, t := range ts {
		fmt.Printf("%d. %s — %s\n", i+1, t.NCTID, t.BriefTitle)
		fmt.Printf("   Phase: %s  Age: %s  Sex: %s  Sponsor: %s\n", t.Phase, t.AgeRange, t.Sex, t.Sponsor)
		if t.MatchLabel != "" {
			fmt.Printf("   Match: %s (%d/100) — %s\n", t.MatchLabel, t.MatchScore, t.MatchReason)
		}
		if len(t.Locations) > 0 {
			parts := make([]string, 0, len(t.Locations))
			for _, loc := range t.Locations {
				parts = append(parts, strings.TrimSpace(strings.Join(nonEmpty(loc.Facility, loc.City, loc.Country), ", ")))
			}
			fmt.Printf("   Locations: %s\n", strings.Join(parts, " | "))
		}
		fmt.Println()
	}
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	searchCmd.Flags().String("condition", "", "condition to search for")
	searchCmd.Flags().StringSlice("synonyms", nil, "condition synonyms (comma-separated)")
	searchCmd.Flags().String("location", "", "preferred trial location")
	searchCmd.Flags().String("profile", "", "patient profile YAML file")
	searchCmd.Flags().Bool("score", false, "score results against the profile (requires --profile)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
