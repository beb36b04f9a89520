package main

import (
	"fmt"
	"strings"

	"github.com/meghashyamc/supportdesk/api"
	"github.com/meghashyamc/supportdesk/config"
	"github.com/meghashyamc/supportdesk/db/ticketdb"
	"github.com/meghashyamc/supportdesk/logger"
	"github.com/meghashyamc/supportdesk/services/chat"
	"github.com/meghashyamc/supportdesk/services/documents"
	"github.com/meghashyamc/supportdesk/services/search"
	"github.com/meghashyamc/supportdesk/services/ticket"
	"github.com/spf13/cobra"
)

const notFoundMessage = "I couldn’t find this in the current documents. Run `supportdesk ticket` to create a support ticket."

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and chat page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return api.Run(cmd.Context(), cfg)
		},
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question...>",
		Short: "Search the documents for a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logger.New(cfg.GetLogLevel())

			library, err := documents.New(log, cfg.GetDataDir()).Library()
			if err != nil {
				return err
			}

			question := strings.Join(args, " ")
			hits := search.New(log, cfg.GetMaxHits(), cfg.GetExcerptWindow()).Search(question, library)
			if len(hits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), notFoundMessage)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), chat.FormatAnswer(hits))

			return nil
		},
	}
}

func documentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "documents",
		Short: "List loaded documents and files that could not be read",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logger.New(cfg.GetLogLevel())

			library, err := documents.New(log, cfg.GetDataDir()).Library()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, doc := range library.Documents {
				if doc.Kind == documents.KindPDF {
					fmt.Fprintf(out, "%s\t%s\t%d pages\n", doc.Name, doc.Kind, len(doc.Pages))
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", doc.Name, doc.Kind)
			}
			for _, warning := range library.Warnings {
				fmt.Fprintf(out, "skipped %s: %s\n", warning.File, warning.Reason)
			}

			return nil
		},
	}
}

func ticketCmd() *cobra.Command {
	var t ticketdb.Ticket

	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Record a support ticket",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newTicketService()
			if err != nil {
				return err
			}

			message, err := service.Create(t)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)

			return nil
		},
	}
	cmd.Flags().StringVar(&t.Name, "name", "", "your name")
	cmd.Flags().StringVar(&t.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&t.Summary, "summary", "", "one line summary")
	cmd.Flags().StringVar(&t.Description, "description", "", "details of the issue")

	return cmd
}

func ticketsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tickets",
		Short: "List recorded tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newTicketService()
			if err != nil {
				return err
			}

			tickets, err := service.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, t := range tickets {
				fmt.Fprintf(out, "%d. %s <%s>: %s\n", i+1, t.Name, t.Email, t.Summary)
			}

			return nil
		},
	}
}

func newTicketService() (*ticket.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.GetLogLevel())

	store, err := ticketdb.New(log, cfg.GetTicketFile())
	if err != nil {
		return nil, err
	}

	return ticket.New(log, store), nil
}
