// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bonial-oss/vendor-risk/internal/output"
	"github.com/bonial-oss/vendor-risk/internal/state"
)

func defaultPrefsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(dir, "vendor-risk", "preferences.yaml"), nil
}

func newPrefsCommand(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change interface preferences",
	}
	cmd.PersistentFlags().StringVar(&file, "file", "", "Preferences file (default: $XDG_CONFIG_HOME/vendor-risk/preferences.yaml)")

	path := func() (string, error) {
		if file != "" {
			return file, nil
		}
		return defaultPrefsPath()
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current preferences",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := path()
			if err != nil {
				return err
			}
			ui, err := state.LoadAppState(p)
			if err != nil {
				return err
			}
			prefs := ui.Preferences()
			return a.render(prefs, func(w io.Writer, _ output.TableConfig) error {
				if err := writePrefs(w, prefs); err != nil {
					return err
				}
				if n := ui.Unread(); n > 0 {
					_, err := fmt.Fprintf(w, "Unread:    %d (run \"vendor-risk notifications\")\n", n)
					return err
				}
				return nil
			})
		},
	}

	set := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a preference: theme (light, dark, system), language (en, de, fr, es) or sidebar (collapsed true/false)",
		Example: `  vendor-risk prefs set theme dark
  vendor-risk prefs set sidebar true`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := path()
			if err != nil {
				return err
			}
			ui, err := state.LoadAppState(p)
			if err != nil {
				return err
			}
			unsubscribe := ui.Subscribe(func() {
				a.logger.Debug("preferences changed", "preferences", ui.Preferences())
			})
			defer unsubscribe()

			key, value := args[0], args[1]
			switch key {
			case "theme":
				err = ui.SetTheme(state.Theme(value))
			case "language", "lang":
				err = ui.SetLanguage(value)
			case "sidebar":
				var collapsed bool
				collapsed, err = strconv.ParseBool(value)
				if err == nil && collapsed != ui.Preferences().SidebarCollapsed {
					ui.ToggleSidebar()
				}
			default:
				return usageError("unknown preference %q (expected theme, language or sidebar)", key)
			}
			if err != nil {
				return usageError("%v", err)
			}

			if err := ui.Save(p); err != nil {
				return err
			}
			return writePrefs(a.stdout, ui.Preferences())
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}

func writePrefs(w io.Writer, prefs state.Preferences) error {
	_, err := fmt.Fprintf(w, "Theme:     %s\nLanguage:  %s\nSidebar:   %s\n",
		prefs.Theme, prefs.Language, sidebarLabel(prefs.SidebarCollapsed))
	return err
}

func sidebarLabel(collapsed bool) string {
	if collapsed {
		return "collapsed"
	}
	return "expanded"
}
