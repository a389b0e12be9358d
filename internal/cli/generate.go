package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Boluski2/lendsqr-admin/internal/generator"
)

var (
	generateCount     int
	generateSeed      int64
	generateOutputDir string
	generateStdout    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a users.json dataset",
	Long: `Generate a fixed dataset of synthetic users. Point GENERATOR_DATASET_PATH
at the written file to serve the same records on every start.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		gen := generator.New(generator.Config{Count: generateCount, Seed: generateSeed})
		users, err := gen.Generate(ctx)
		if err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}

		if generateStdout {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(users)
		}

		path, err := generator.WriteDataset(users, generateOutputDir)
		if err != nil {
			return fmt.Errorf("failed to write dataset: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated %d users into %s\n", len(users), path)
		return nil
	},
}

func init() {
	def := generator.DefaultConfig()
	generateCmd.Flags().IntVar(&generateCount, "count", def.Count, "number of users to generate")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 0, "random seed for deterministic generation (0 uses the clock)")
	generateCmd.Flags().StringVar(&generateOutputDir, "output-dir", "data", "directory to write users.json")
	generateCmd.Flags().BoolVar(&generateStdout, "stdout", false, "write the dataset to stdout instead of a file")
}
