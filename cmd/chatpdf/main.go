// Command chatpdf ingests documents into a vector store and assembles
// retrieval context for chat turns.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mikedodunnit/Chatpdf/internal/config"
	"github.com/Mikedodunnit/Chatpdf/internal/version"
)

func main() {
	if err := rootCMD().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCMD() *cobra.Command {
	var env string
	root := &cobra.Command{
		Use:          "chatpdf",
		Short:        "Retrieval core for chatting with uploaded documents",
		Version:      version.String(),
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&env, "env", "e", config.GetEnv(), "config environment (config/<env>.yaml)")

	root.AddCommand(
		serveCMD(&env),
		ingestCMD(&env),
		contextCMD(&env),
		deleteCMD(&env),
	)
	root.SetVersionTemplate(fmt.Sprintf("chatpdf %s\n", version.String()))
	return root
}
