package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var env string

func main() {
	godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "supportdesk",
		Short:        "Answer support questions from local documents and record tickets",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&env, "env", "e", "", "config environment to load (default: $ENV or local)")

	root.AddCommand(serveCmd())
	root.AddCommand(askCmd())
	root.AddCommand(documentsCmd())
	root.AddCommand(ticketCmd())
	root.AddCommand(ticketsCmd())

	return root
}
