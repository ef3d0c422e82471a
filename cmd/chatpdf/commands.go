package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func ingestCMD(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <document-key>",
		Short: "Extract, embed and store a document from the blob store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *env)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.ingest.Ingest(a.logged(cmd.Context()), args[0])
			if err != nil {
				return fmt.Errorf("ingest %s: %w", args[0], err)
			}
			return printJSON(cmd, map[string]any{
				"document_key": res.DocumentKey,
				"collection":   res.Collection,
				"chunk_count":  res.ChunkCount,
				"preview":      res.Preview,
			})
		},
	}
}

func contextCMD(env *string) *cobra.Command {
	var showStage bool
	c := &cobra.Command{
		Use:   "context <document-key> <query>",
		Short: "Print the retrieval context for a question about a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *env)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.retrieval.Context(a.logged(cmd.Context()), args[1], args[0])
			if err != nil {
				return err
			}
			if showStage {
				cmd.PrintErrf("stage: %s\n", res.Stage)
			}
			cmd.Println(res.Context)
			return nil
		},
	}
	c.Flags().BoolVar(&showStage, "stage", false, "print the serving stage to stderr")
	return c
}

func deleteCMD(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <document-key>",
		Short: "Remove a document's collection and vectors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *env)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.documents.Delete(a.logged(cmd.Context()), args[0]); err != nil {
				return err
			}
			cmd.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
