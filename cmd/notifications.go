// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bonial-oss/vendor-risk/internal/logging"
	"github.com/bonial-oss/vendor-risk/internal/output"
	"github.com/bonial-oss/vendor-risk/internal/state"
)

// notify records the outcome of a command in the local notification feed.
// Failures only warn: the command itself already succeeded.
func (a *app) notify(level state.NotificationLevel, format string, args ...any) {
	path, err := defaultPrefsPath()
	if err == nil {
		var ui *state.AppState
		if ui, err = state.LoadAppState(path); err == nil {
			ui.Notify(level, fmt.Sprintf(format, args...))
			err = ui.Save(path)
		}
	}
	if err != nil {
		logging.Warnf(a.stderr, "could not record notification: %v", err)
	}
}

func newNotificationsCommand(a *app) *cobra.Command {
	var (
		file   string
		unread bool
	)
	path := func() (string, error) {
		if file != "" {
			return file, nil
		}
		return defaultPrefsPath()
	}

	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"inbox"},
		Short:   "List notifications about earlier uploads and assessments and mark them read",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := path()
			if err != nil {
				return err
			}
			ui, err := state.LoadAppState(p)
			if err != nil {
				return err
			}
			list := []state.Notification{}
			for _, n := range ui.Notifications() {
				if !unread || !n.Read {
					list = append(list, n)
				}
			}
			if err := a.render(list, func(w io.Writer, _ output.TableConfig) error {
				return writeNotifications(w, list)
			}); err != nil {
				return err
			}
			if ui.Unread() == 0 {
				return nil
			}
			ui.MarkAllRead()
			return ui.Save(p)
		},
	}
	cmd.PersistentFlags().StringVar(&file, "file", "", "Preferences file (default: $XDG_CONFIG_HOME/vendor-risk/preferences.yaml)")
	cmd.Flags().BoolVar(&unread, "unread", false, "Only unread notifications")

	dismiss := &cobra.Command{
		Use:   "dismiss ID...",
		Short: "Remove notifications",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := path()
			if err != nil {
				return err
			}
			ui, err := state.LoadAppState(p)
			if err != nil {
				return err
			}
			before := len(ui.Notifications())
			for _, id := range args {
				ui.Dismiss(id)
			}
			if err := ui.Save(p); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Dismissed %d notifications\n", before-len(ui.Notifications()))
			return nil
		},
	}
	cmd.AddCommand(dismiss)
	return cmd
}

func writeNotifications(w io.Writer, list []state.Notification) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No notifications")
		return err
	}
	for _, n := range list {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %-4s %s  %-7s %s\n",
			marker, n.ID, n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Level, n.Message); err != nil {
			return err
		}
	}
	return nil
}
