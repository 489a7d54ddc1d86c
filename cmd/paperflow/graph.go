// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperflow/internal/concepts"
	"github.com/pdiddy/paperflow/internal/graph"
	"github.com/pdiddy/paperflow/internal/session"
	"github.com/pdiddy/paperflow/pkg/types"
)

var graphCmd = &cobra.Command{
	Use:   "graph [session-id]",
	Short: "Build the concept knowledge graph for a session",
	Long: `Graph extracts concepts and relationships from the session's paper
content, assembles them into a knowledge graph with ontology annotations,
and stores the result as knowledge_model.json.`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	sess, err := session.Open(sessionConfig(cmd), args[0])
	if err != nil {
		return err
	}

	var content types.PaperContent
	if err := sess.LoadJSON(sess.PaperContentPath(), &content); err != nil {
		return err
	}

	ctx := context.Background()
	cfg := aiConfig()
	gen := textGenerator(cfg)

	found, err := concepts.NewExtractor(gen, cfg, logger).Extract(ctx, &content)
	if err != nil {
		return err
	}
	relationships, err := concepts.NewIdentifier(gen, cfg, logger).Identify(ctx, found, &content)
	if err != nil {
		return err
	}

	assembler := graph.NewAssembler(logger, nil)
	kg := assembler.Assemble(found, relationships)
	assembler.Enhance(kg)
	if err := sess.SaveJSON(sess.KnowledgeModelPath(), kg); err != nil {
		return err
	}

	fmt.Printf("knowledge graph: %d concepts, %d relationships\n",
		len(kg.Concepts), len(kg.Relationships))
	return nil
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
