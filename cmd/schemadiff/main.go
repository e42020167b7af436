package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/koba/schema-diff/internal/database"
	"github.com/koba/schema-diff/internal/diff"
	"github.com/koba/schema-diff/internal/generator"
	"github.com/koba/schema-diff/internal/hints"
	"github.com/koba/schema-diff/internal/snapshot"
)

var (
	configPath string
	tables     []string
	outputDir  string
	dialect    string
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("schemadiff: ")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "schemadiff",
	Short:         "Database schema snapshot and diff tool",
	Long:          `A tool to snapshot table schemas, compare snapshots, and generate migration DDL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [name]",
	Short: "Create a schema snapshot",
	Long:  `Create a snapshot of the current database schema.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSnapshot,
}

var diffCmd = &cobra.Command{
	Use:   "diff <snapshot1> <snapshot2>",
	Short: "Compare two snapshots",
	Long:  `Compare two schema snapshots and display the differences.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <snapshot1> <snapshot2>",
	Short: "Generate migration SQL",
	Long:  `Generate DDL statements to migrate from snapshot1 to snapshot2.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runMigrate,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <snapshot>",
	Short: "Print the schema stored in a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var planCmd = &cobra.Command{
	Use:   "plan <snapshot> <hints.yaml>",
	Short: "Generate the DDL needed to satisfy column hints",
	Long: `Compare a snapshot against a YAML file of column hints and generate DDL.
Attributes left out of the hints are kept as they are in the snapshot.`,
	Args: cobra.ExactArgs(2),
	RunE: runPlan,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML database configuration file (default: environment variables)")

	// Snapshot command flags
	snapshotCmd.Flags().StringSliceVar(&tables, "tables", nil, "Comma-separated list of tables to snapshot (default: all tables)")
	snapshotCmd.Flags().StringVar(&outputDir, "output-dir", "./snapshots", "Output directory for snapshots")

	migrateCmd.Flags().StringVar(&dialect, "dialect", "", "SQL dialect to generate (default: db_type recorded in the snapshot)")
	planCmd.Flags().StringVar(&dialect, "dialect", "", "SQL dialect to generate (default: db_type recorded in the snapshot)")

	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(planCmd)
}

func loadConfig() (database.Config, error) {
	if configPath != "" {
		return database.LoadConfig(configPath)
	}
	return database.LoadConfigFromEnv()
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewDatabase(config)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	if err := db.Connect(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Generate snapshot filename
	var filename string
	if len(args) > 0 {
		filename = args[0]
		if !strings.HasSuffix(filename, ".db") {
			filename += ".db"
		}
	} else {
		timestamp := time.Now().Format("2006-01-02-15-04-05")
		filename = fmt.Sprintf("%s-%s.db", strings.TrimSuffix(filepath.Base(config.Database), ".db"), timestamp)
	}

	outputPath := filepath.Join(outputDir, filename)

	fmt.Fprintf(cmd.OutOrStdout(), "Creating snapshot: %s\n", outputPath)
	metadata := map[string]string{snapshot.MetaDatabase: config.Database}
	if err := snapshot.CreateSnapshot(db, tables, outputPath, metadata); err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot created successfully: %s\n", outputPath)
	return nil
}

func loadPair(path1, path2 string) (*snapshot.Snapshot, *snapshot.Snapshot, error) {
	snap1, err := snapshot.LoadSnapshot(path1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot1: %w", err)
	}

	snap2, err := snapshot.LoadSnapshot(path2)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot2: %w", err)
	}

	return snap1, snap2, nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	snap1, snap2, err := loadPair(args[0], args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n=== Comparing snapshots ===\n\n")
	diff.Fprint(out, diff.Compare(snap1, snap2, diff.Options{}))

	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	snap1, snap2, err := loadPair(args[0], args[1])
	if err != nil {
		return err
	}

	result := diff.Compare(snap1, snap2, diff.Options{})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "-- Migration SQL from %s to %s\n", filepath.Base(args[0]), filepath.Base(args[1]))
	fmt.Fprintf(out, "-- Generated at: %s\n\n", time.Now().Format(time.RFC3339))
	fmt.Fprintln(out, generator.GenerateSQL(result, targetDialect(snap1)))

	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	snap, err := snapshot.LoadSnapshot(args[0])
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	out := cmd.OutOrStdout()
	keys := make([]string, 0, len(snap.Metadata))
	for k := range snap.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "-- %s: %s\n", k, snap.Metadata[k])
	}
	fmt.Fprintln(out)

	names := make([]string, 0, len(snap.Tables))
	for name := range snap.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(out, snap.Tables[name])
	}

	return nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	current, err := snapshot.LoadSnapshot(args[0])
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	desired, err := hints.Load(args[1])
	if err != nil {
		return err
	}

	target := targetDialect(current)
	result := diff.Compare(current, snapshot.New(nil, desired...), diff.Options{Partial: true, Dialect: target})

	out := cmd.OutOrStdout()
	if len(result.SchemaDiffs) == 0 {
		fmt.Fprintln(out, "-- Schema already satisfies the hints")
		return nil
	}

	fmt.Fprintf(out, "-- Plan for %s from %s\n\n", filepath.Base(args[0]), filepath.Base(args[1]))
	fmt.Fprintln(out, generator.GenerateSQL(result, target))

	return nil
}

// targetDialect returns the --dialect flag, or the database type recorded in
// the snapshot
func targetDialect(snap *snapshot.Snapshot) string {
	if dialect != "" {
		return dialect
	}
	if dbType, ok := snap.Metadata[snapshot.MetaDBType]; ok {
		return dbType
	}
	log.Printf("snapshot has no %s; generating MySQL", snapshot.MetaDBType)
	return database.DialectMySQL
}
