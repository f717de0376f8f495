// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/evidence-engine/internal/genai"
	"github.com/pdiddy/evidence-engine/internal/library"
	"github.com/pdiddy/evidence-engine/internal/pipeline"
	"github.com/pdiddy/evidence-engine/internal/source"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

const defaultUserAgent = "evidence-engine/0.1"

var runCmd = &cobra.Command{
	Use:   "run [entries...]",
	Short: "Run pipeline stages for registered source documents",
	Long: `Run executes the evidence pipeline for one or more library entries,
identified by their source-document slugs. By default every stage runs in
order; --from resumes partway through and --only runs a single stage.
Each stage requires the previous stage's structured output, so resuming
only works on an entry whose earlier stages already completed.

The run halts on the first stage that does not complete.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().String("from", "", "resume at the named stage")
	runCmd.Flags().String("only", "", "run a single stage")
	runCmd.Flags().Bool("deep-dive", false, "append the per-group thesis deep-dive")
	runCmd.Flags().String("model", "", "generation model identifier")
	runCmd.Flags().String("effort", "", "reasoning effort: low, medium, high")
	runCmd.Flags().String("api-key", "", "generation API key (default: .secrets/generation-api-key)")
	runCmd.Flags().Duration("call-timeout", 0, "per-call deadline (default 5m)")
	runCmd.Flags().Int("max-output-tokens", 0, "output-length cap per call (default 8192)")
	runCmd.Flags().String("library-dir", "", "library directory (default \"library\")")
	runCmd.Flags().String("sources-dir", "", "sources directory (default \"sources\")")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more entry slugs (see \"source register\")")
	}

	cfg := pipelineConfig(cmd)
	if cfg.Generation.APIKey == "" {
		return fmt.Errorf("no generation API key: pass --api-key or add .secrets/generation-api-key")
	}

	from, _ := cmd.Flags().GetString("from")
	only, _ := cmd.Flags().GetString("only")
	deepDive, _ := cmd.Flags().GetBool("deep-dive")

	store, err := library.NewStore(cfg.Library)
	if err != nil {
		return err
	}
	defer store.Close()

	reg, err := source.NewRegister(cfg.Sources)
	if err != nil {
		return err
	}

	runner := pipeline.New(genai.NewClient(cfg.Generation), store, reg, os.Stdout)

	failed := 0
	for _, id := range args {
		_, err := runner.Run(context.Background(), pipeline.RunRequest{
			EntryID:  id,
			From:     types.Stage(from),
			Only:     types.Stage(only),
			DeepDive: deepDive || cfg.DeepDive,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d entr(ies) failed", failed)
	}
	return nil
}

// pipelineConfig assembles the pipeline configuration from flags, the
// config file, and loaded secrets, in that order of precedence.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	str := func(flag, key, def string) string {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			return v
		}
		if v := viper.GetString(key); v != "" {
			return v
		}
		return def
	}

	apiKey, _ := cmd.Flags().GetString("api-key")
	callTimeout, _ := cmd.Flags().GetDuration("call-timeout")
	if callTimeout == 0 {
		callTimeout = viper.GetDuration("generation.call_timeout")
	}
	maxTokens, _ := cmd.Flags().GetInt("max-output-tokens")
	if maxTokens == 0 {
		maxTokens = viper.GetInt("generation.max_output_tokens")
	}

	return types.PipelineConfig{
		Generation: types.GenerationConfig{
			HTTPConfig: types.HTTPConfig{
				UserAgent: defaultUserAgent,
			},
			Model:           str("model", "generation.model", ""),
			APIKey:          secretDefault("generation-api-key", apiKey),
			Effort:          types.Effort(str("effort", "generation.effort", "")),
			CallTimeout:     callTimeout,
			MaxOutputTokens: maxTokens,
			MaxRetries:      viper.GetInt("generation.max_retries"),
		},
		Library: types.LibraryConfig{
			LibraryDir: str("library-dir", "library.library_dir", "library"),
			Capacity:   viper.GetInt("library.capacity"),
		},
		Sources: types.SourceConfig{
			SourcesDir: str("sources-dir", "sources.sources_dir", "sources"),
		},
		DeepDive: viper.GetBool("deep_dive"),
	}
}
