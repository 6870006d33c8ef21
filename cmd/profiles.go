package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fieldsheet/internal/extract"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the built-in extraction profiles",
	Long: `List the built-in extraction profiles and their tuning. A profile
controls row clustering tolerance, the minimum parsed fields a row needs to
survive noise rejection, and (for calibrated profiles) the fixed column
layout.

Use --show to dump a profile as JSON; the output is a valid starting point
for a custom --profile-file.`,
	Example: `  # List profiles
  fieldsheet profiles

  # Dump the gas-compressor profile as a template for calibration
  fieldsheet profiles --show gas-compressor > rig7.json`,
	Args: cobra.NoArgs,
	RunE: runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)

	profilesCmd.Flags().String("show", "", "Print the named profile as JSON")
}

func runProfiles(cmd *cobra.Command, args []string) error {
	show, _ := cmd.Flags().GetString("show")

	if show != "" {
		profile, err := extract.ProfileByName(show)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	}

	fmt.Printf("%-16s  %-10s  %-11s  %-10s  %s\n", "NAME", "LAYOUT", "ROW TOL", "MIN FIELDS", "COLUMNS")
	for _, name := range extract.BuiltinProfileNames() {
		profile, err := extract.ProfileByName(name)
		if err != nil {
			return err
		}
		layout := "header"
		columns := "-"
		if profile.Calibrated() {
			layout = "calibrated"
			columns = fmt.Sprintf("%d", len(profile.Columns))
		}
		fmt.Printf("%-16s  %-10s  %-11.0f  %-10d  %s\n",
			name, layout, profile.RowTolerance, profile.MinFields, columns)
	}
	return nil
}
