// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperflow/internal/session"
	"github.com/pdiddy/paperflow/internal/spec"
	"github.com/pdiddy/paperflow/pkg/types"
)

var specsCmd = &cobra.Command{
	Use:   "specs",
	Short: "Manage executable specifications",
}

var specsGenerateCmd = &cobra.Command{
	Use:   "generate [session-id]",
	Short: "Generate one executable specification per paper algorithm",
	Long: `Generate produces a Markdown specification for every algorithm in the
session's paper: inputs, outputs, implementation steps, and verification
fixtures. Specifications land in the session's executable_specs/ directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runSpecsGenerate,
}

func runSpecsGenerate(cmd *cobra.Command, args []string) error {
	sess, err := session.Open(sessionConfig(cmd), args[0])
	if err != nil {
		return err
	}

	var content types.PaperContent
	if err := sess.LoadJSON(sess.PaperContentPath(), &content); err != nil {
		return err
	}
	var kg types.PaperKnowledgeGraph
	if err := sess.LoadJSON(sess.KnowledgeModelPath(), &kg); err != nil {
		return err
	}

	language, _ := cmd.Flags().GetString("language")
	if language == "" {
		language = viper.GetString("generation.language")
	}

	cfg := aiConfig()
	generator := spec.NewGenerator(textGenerator(cfg), cfg, logger)

	for _, algo := range content.Algorithms {
		s, err := generator.Generate(context.Background(), algo, &kg, language)
		if err != nil {
			return err
		}
		path := sess.SpecPath(s.ID)
		if err := os.WriteFile(path, []byte(spec.Format(s)), 0o644); err != nil {
			return fmt.Errorf("writing specification %s: %w", path, err)
		}
		fmt.Printf("wrote %s (%d steps, %d fixtures)\n",
			path, len(s.Steps), len(s.VerificationFixtures))
	}
	return nil
}

var specsListCmd = &cobra.Command{
	Use:   "list [session-id]",
	Short: "List the session's executable specifications",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := session.Open(sessionConfig(cmd), args[0])
		if err != nil {
			return err
		}
		files, err := sess.SpecFiles()
		if err != nil {
			return err
		}
		for _, path := range files {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			s, err := spec.Parse(string(data))
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}
			fmt.Printf("%-30s %s\n", s.ID, s.Title)
		}
		return nil
	},
}

func init() {
	specsGenerateCmd.Flags().String("language", "", "target language for code skeletons (go, python, typescript)")
	specsCmd.AddCommand(specsGenerateCmd)
	specsCmd.AddCommand(specsListCmd)
	rootCmd.AddCommand(specsCmd)
}
