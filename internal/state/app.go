// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Languages lists the supported interface languages.
var Languages = []string{"en", "de", "fr", "es"}

// Preferences are the persisted user interface settings.
type Preferences struct {
	Theme            Theme  `yaml:"theme" json:"theme"`
	Language         string `yaml:"language" json:"language"`
	SidebarCollapsed bool   `yaml:"sidebar_collapsed" json:"sidebar_collapsed"`
}

// DefaultPreferences is what a fresh installation starts with.
func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeSystem, Language: "en"}
}

type NotificationLevel string

const (
	NotifyInfo    NotificationLevel = "info"
	NotifySuccess NotificationLevel = "success"
	NotifyWarning NotificationLevel = "warning"
	NotifyError   NotificationLevel = "error"
)

// maxNotifications bounds the feed; older entries are dropped first.
const maxNotifications = 50

// Notification is a message about the outcome of an earlier action.
type Notification struct {
	ID        string            `yaml:"id" json:"id"`
	Level     NotificationLevel `yaml:"level" json:"level"`
	Message   string            `yaml:"message" json:"message"`
	Read      bool              `yaml:"read" json:"read"`
	CreatedAt time.Time         `yaml:"created_at" json:"created_at"`
}

// AppState holds preferences and notifications.
type AppState struct {
	base
	prefs         Preferences
	notifications []Notification
	seq           int
	now           func() time.Time
}

// NewAppState creates a container starting from prefs.
func NewAppState(prefs Preferences) *AppState {
	return &AppState{prefs: prefs, now: time.Now}
}

func (s *AppState) Preferences() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

func (s *AppState) SetTheme(t Theme) error {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return fmt.Errorf("unknown theme %q (expected light, dark or system)", t)
	}
	s.update(func() { s.prefs.Theme = t })
	return nil
}

func (s *AppState) SetLanguage(lang string) error {
	for _, l := range Languages {
		if l == lang {
			s.update(func() { s.prefs.Language = lang })
			return nil
		}
	}
	return fmt.Errorf("unsupported language %q", lang)
}

func (s *AppState) ToggleSidebar() bool {
	var collapsed bool
	s.update(func() {
		s.prefs.SidebarCollapsed = !s.prefs.SidebarCollapsed
		collapsed = s.prefs.SidebarCollapsed
	})
	return collapsed
}

// Notify appends a notification and returns its id.
func (s *AppState) Notify(level NotificationLevel, message string) string {
	var id string
	s.update(func() {
		s.seq++
		id = strconv.Itoa(s.seq)
		s.notifications = append(s.notifications, Notification{
			ID:        id,
			Level:     level,
			Message:   message,
			CreatedAt: s.now(),
		})
		if over := len(s.notifications) - maxNotifications; over > 0 {
			s.notifications = append([]Notification(nil), s.notifications[over:]...)
		}
	})
	return id
}

// Notifications returns the current notifications, oldest first.
func (s *AppState) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func (s *AppState) Unread() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, note := range s.notifications {
		if !note.Read {
			n++
		}
	}
	return n
}

func (s *AppState) MarkAllRead() {
	s.update(func() {
		for i := range s.notifications {
			s.notifications[i].Read = true
		}
	})
}

func (s *AppState) Dismiss(id string) {
	s.update(func() {
		out := s.notifications[:0]
		for _, n := range s.notifications {
			if n.ID != id {
				out = append(out, n)
			}
		}
		s.notifications = out
	})
}

func (s *AppState) update(fn func()) {
	s.mu.Lock()
	fn()
	s.mu.Unlock()
	s.notify()
}

// appFile is the on-disk layout. Preferences stay at the top level so
// files holding only preferences keep loading.
type appFile struct {
	Preferences   `yaml:",inline"`
	Notifications []Notification `yaml:"notifications,omitempty"`
}

// LoadAppState reads preferences and notifications from a YAML file. A
// missing file yields the default preferences and no notifications.
func LoadAppState(path string) (*AppState, error) {
	file := appFile{Preferences: DefaultPreferences()}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewAppState(file.Preferences), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading preferences: %w", err)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing preferences %s: %w", path, err)
	}

	s := NewAppState(file.Preferences)
	s.notifications = file.Notifications
	for _, n := range file.Notifications {
		if id, err := strconv.Atoi(n.ID); err == nil && id > s.seq {
			s.seq = id
		}
	}
	return s, nil
}

// Save writes the state as YAML, creating parent directories.
func (s *AppState) Save(path string) error {
	s.mu.RLock()
	file := appFile{Preferences: s.prefs, Notifications: s.notifications}
	data, err := yaml.Marshal(file)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}
