// mlpipe trains the personality classifier and promotes it to the model registry.
//
// Usage:
//
//	mlpipe run                 run the seven training stages once
//	mlpipe runs [--limit=N]    list recent runs from the ledger
//	mlpipe predict --input=F   score a cleaned CSV/XLSX table with the production model
//	mlpipe migrate             create the ledger tables and exit
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"mlpipe/adapters/tabular"
	"mlpipe/internal/config"
	"mlpipe/internal/container"
	"mlpipe/internal/errors"
	"mlpipe/internal/migration"
	"mlpipe/internal/ml"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "mlpipe",
	Short: "Batch training pipeline for the personality classifier",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load environment variables from .env file
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run ingestion through model push once",
	RunE:  runPipeline,
}

var runsFlags struct {
	limit int
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent pipeline runs",
	RunE:  listRuns,
}

var predictFlags struct {
	input string
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict labels for a cleaned table with the production model",
	RunE:  predict,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the run ledger schema",
	RunE:  migrateLedger,
}

func init() {
	runsCmd.Flags().IntVar(&runsFlags.limit, "limit", 20, "Maximum number of runs to list")
	predictCmd.Flags().StringVar(&predictFlags.input, "input", "", "Cleaned CSV or XLSX table without the target column (required)")
	_ = predictCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newContainer() (*container.Container, error) {
	appConfig, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(appConfig)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c, err := newContainer()
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	if err := c.InitWithDatabase(ctx); err != nil {
		return err
	}
	if err := c.InitStore(ctx); err != nil {
		return err
	}
	if err := c.InitSource(ctx, nil); err != nil {
		return err
	}
	if err := c.InitPipeline(version); err != nil {
		return err
	}

	outcome, err := c.Pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", errors.GetCode(err), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:      %s\n", outcome.Manifest.RunID)
	fmt.Fprintf(out, "Test F1:  %.4f\n", outcome.Trainer.Metrics.F1)
	fmt.Fprintf(out, "Accepted: %t (delta %.4f)\n", outcome.Evaluation.Accepted, outcome.Evaluation.Delta)
	if outcome.Pusher.Pushed {
		fmt.Fprintf(out, "Pushed:   %s/%s\n", outcome.Pusher.Bucket, outcome.Pusher.ModelKey)
	}
	return nil
}

func listRuns(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c, err := newContainer()
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	if err := c.InitWithDatabase(ctx); err != nil {
		return err
	}
	runs, err := c.Ledger.ListRuns(ctx, runsFlags.limit)
	if err != nil {
		return errors.DatabaseError("failed to list runs", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSTAMP\tSTATUS\tERROR\tFINGERPRINT")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.RunID, r.Stamp, r.Status, r.ErrorCode, r.Fingerprint.Short())
	}
	return w.Flush()
}

func predict(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c, err := newContainer()
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	if err := c.InitStore(ctx); err != nil {
		return err
	}

	data, err := c.Store.Get(ctx, c.Config.Registry.ProductionModelKey)
	if err != nil {
		return errors.Promotion("predict", "failed to fetch production model", err)
	}
	model, err := ml.UnmarshalModel(data)
	if err != nil {
		return err
	}

	table, err := tabular.NewDataReader(predictFlags.input).ReadTable()
	if err != nil {
		return err
	}
	if table.Has(c.Schema.TargetColumn) {
		table = table.Drop(c.Schema.TargetColumn)
	}

	labels, err := model.PredictLabels(table)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, l := range labels {
		fmt.Fprintln(out, l)
	}
	return nil
}

func migrateLedger(cmd *cobra.Command, _ []string) error {
	c, err := newContainer()
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	// InitWithDatabase applies the migrations before opening the ledger
	if err := c.InitWithDatabase(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Ledger schema %s ready on %s\n", migration.NewRunner().Version(), c.Config.Ledger.Driver)
	return nil
}
