package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fieldsheet/internal/config"
	"fieldsheet/internal/logger"
	"fieldsheet/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the local extraction database",
	Long: `Persist extraction JSON files to the local SQLite database and manage
stored extractions: list them, print one back as JSON, mark one as verified
after operator review, or delete one.

The database path defaults to DATABASE_PATH or fieldsheet.db.`,
	Example: `  # Save an extraction
  fieldsheet store save readings.json

  # List stored extractions
  fieldsheet store list

  # Print a stored extraction as JSON
  fieldsheet store get 7c9e6679-7425-40de-944b-e07fc1f90ae7

  # Mark every value of an extraction as verified
  fieldsheet store verify 7c9e6679-7425-40de-944b-e07fc1f90ae7`,
}

var storeSaveCmd = &cobra.Command{
	Use:   "save [extraction-file]",
	Short: "Save an extraction JSON to the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreSave,
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored extractions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runStoreList,
}

var storeGetCmd = &cobra.Command{
	Use:   "get [extraction-id]",
	Short: "Print a stored extraction as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreGet,
}

var storeVerifyCmd = &cobra.Command{
	Use:   "verify [extraction-id]",
	Short: "Mark all values of a stored extraction as operator-verified",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreVerify,
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete [extraction-id]",
	Short: "Delete a stored extraction",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreDelete,
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeSaveCmd)
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeGetCmd)
	storeCmd.AddCommand(storeVerifyCmd)
	storeCmd.AddCommand(storeDeleteCmd)

	storeCmd.PersistentFlags().String("db", "", "SQLite database path (default: DATABASE_PATH or fieldsheet.db)")
	storeListCmd.Flags().Int("limit", 20, "Maximum number of extractions to list (0 for all)")
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		if cfg, err := config.Load(); err == nil {
			dbPath = cfg.DatabasePath
		} else {
			dbPath = "fieldsheet.db"
		}
	}
	return store.Open(dbPath)
}

func runStoreSave(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("store-cmd")

	payload, err := loadPayload(args[0])
	if err != nil {
		return err
	}

	db, err := openStore(cmd)
	if err != nil {
		return err
	}

	id, err := db.SaveExtraction(payload)
	if err != nil {
		return err
	}

	log.Info().
		Str("id", id).
		Str("source", payload.SourceFile).
		Int("readings", len(payload.Readings)).
		Msg("Extraction saved")

	fmt.Printf("Saved extraction %s (%d readings from %s)\n", id, len(payload.Readings), payload.SourceFile)
	return nil
}

func runStoreList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	db, err := openStore(cmd)
	if err != nil {
		return err
	}

	extractions, err := db.ListExtractions(limit)
	if err != nil {
		return err
	}
	if len(extractions) == 0 {
		fmt.Println("No stored extractions.")
		return nil
	}

	fmt.Printf("%-36s  %-24s  %-14s  %-13s  %s\n", "ID", "SOURCE", "ENGINE", "PROFILE", "PROCESSED")
	for _, e := range extractions {
		source := e.SourceFile
		if len(source) > 24 {
			source = source[:21] + "..."
		}
		fmt.Printf("%-36s  %-24s  %-14s  %-13s  %s\n",
			e.ID, source, e.Engine, e.Profile, e.ProcessedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runStoreGet(cmd *cobra.Command, args []string) error {
	db, err := openStore(cmd)
	if err != nil {
		return err
	}

	payload, err := db.GetExtraction(args[0])
	if err != nil {
		return err
	}
	if payload == nil {
		return fmt.Errorf("no extraction found with id %s", args[0])
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func runStoreVerify(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("store-cmd")

	db, err := openStore(cmd)
	if err != nil {
		return err
	}

	if err := db.MarkVerified(args[0]); err != nil {
		return err
	}

	log.Info().Str("id", args[0]).Msg("Extraction marked verified")
	fmt.Printf("Extraction %s marked as verified.\n", args[0])
	return nil
}

func runStoreDelete(cmd *cobra.Command, args []string) error {
	db, err := openStore(cmd)
	if err != nil {
		return err
	}

	if err := db.DeleteExtraction(args[0]); err != nil {
		return err
	}

	fmt.Printf("Extraction %s deleted.\n", args[0])
	return nil
}
