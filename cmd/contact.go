// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/bonial-oss/vendor-risk/internal/client"
	"github.com/bonial-oss/vendor-risk/internal/output"
	"github.com/bonial-oss/vendor-risk/internal/store"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

func newContactCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send or review contact form submissions",
	}
	cmd.AddCommand(newContactSendCommand(a), newContactListCommand(a))
	return cmd
}

func newContactSendCommand(a *app) *cobra.Command {
	var msg types.ContactSubmission
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit the public contact form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := a.newClient().SubmitContact(cmd.Context(), msg)
			if client.IsStatus(err, http.StatusTooManyRequests) {
				return usageError("too many submissions; try again later")
			}
			if err != nil {
				return apiError(err)
			}
			fmt.Fprintf(a.stdout, "Message sent (reference %s)\n", id)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&msg.FirstName, "first-name", "", "First name")
	flags.StringVar(&msg.LastName, "last-name", "", "Last name")
	flags.StringVar(&msg.Email, "email", "", "Reply-to email address")
	flags.StringVar(&msg.Phone, "phone", "", "Phone number")
	flags.StringVar(&msg.Company, "company", "", "Company")
	flags.StringVar(&msg.Topic, "topic", "", "Topic")
	flags.StringVarP(&msg.Message, "message", "m", "", "Message text")
	for _, name := range []string{"first-name", "last-name", "email", "message"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

// newContactListCommand reads submissions straight from the database, as
// the API exposes no read endpoint for them.
func newContactListCommand(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contact form submissions from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := store.Open(store.Options{
				Driver: a.cfg.Database.Driver,
				DSN:    a.cfg.Database.DSN,
				Debug:  a.cfg.Database.Debug,
			})
			if err != nil {
				return err
			}
			st := store.New(db)
			defer st.Close()

			list, err := st.Contacts.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return a.render(list, func(w io.Writer, cfg output.TableConfig) error {
				return output.WriteContacts(w, list, cfg)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of submissions (0 for all)")
	return cmd
}
