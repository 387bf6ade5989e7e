// Package settings provides user preferences with file watching and persistence.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/coinflip-tui/internal/logger"
	"github.com/j-veylop/coinflip-tui/internal/models"
)

// Event represents a settings service event.
type Event struct {
	Error    error
	Settings models.Settings
	Type     EventType
}

// EventType defines the type of settings event.
type EventType int

const (
	EventSettingsLoaded EventType = iota
	EventSettingsChanged
	EventError
)

// Service manages settings with file watching and change notifications.
type Service struct {
	mu            sync.RWMutex
	settings      models.Settings
	filePath      string
	watcher       *fsnotify.Watcher
	onChange      func(models.Settings)
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	closeOnce     sync.Once
}

// New creates a settings service backed by filePath and starts watching it.
// A missing file is created with defaults; an unreadable one falls back to
// defaults without being overwritten.
func New(filePath string) (*Service, error) {
	s := &Service{
		settings:  models.DefaultSettings(),
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := s.load(); err != nil {
		if os.IsNotExist(err) {
			if err := s.save(); err != nil {
				return nil, fmt.Errorf("failed to create settings file: %w", err)
			}
		} else {
			logger.Warn("settings file unreadable, using defaults", "path", filePath, "error", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventSettingsLoaded, Settings: s.Get()})

	return s, nil
}

// Events returns the event channel for subscribing to settings changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// OnChange registers a callback run after an external edit is reloaded.
func (s *Service) OnChange(fn func(models.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Get returns the current settings.
func (s *Service) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update applies fn to the settings and saves them.
func (s *Service) Update(fn func(*models.Settings)) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.settings
	fn(&s.settings)
	if err := s.saveLocked(); err != nil {
		s.settings = prev
		return prev, fmt.Errorf("failed to save settings: %w", err)
	}

	s.sendEvent(Event{Type: EventSettingsChanged, Settings: s.settings})
	return s.settings, nil
}

// ToggleSound flips the sound preference.
func (s *Service) ToggleSound() (models.Settings, error) {
	return s.Update(func(st *models.Settings) { st.SoundEnabled = !st.SoundEnabled })
}

// ToggleAnimations flips the animation preference.
func (s *Service) ToggleAnimations() (models.Settings, error) {
	return s.Update(func(st *models.Settings) { st.AnimationsEnabled = !st.AnimationsEnabled })
}

// CompleteOnboarding marks the welcome screen as seen.
func (s *Service) CompleteOnboarding() (models.Settings, error) {
	return s.Update(func(st *models.Settings) { st.HasCompletedOnboarding = true })
}

// Path returns the settings file path.
func (s *Service) Path() string {
	return s.filePath
}

// load reads settings from the JSON file. Absent fields keep their defaults.
func (s *Service) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	st := models.DefaultSettings()
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("failed to parse settings file: %w", err)
	}

	s.mu.Lock()
	s.settings = st
	s.mu.Unlock()
	return nil
}

func (s *Service) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked writes settings to the JSON file (must hold lock).
func (s *Service) saveLocked() error {
	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// startWatcher watches the settings directory to catch renames onto the file.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads settings after an edit. Our own saves reload to
// identical values and are not reported.
func (s *Service) handleFileChange() {
	prev := s.Get()

	if err := s.load(); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	current := s.Get()
	if current == prev {
		return
	}

	logger.Info("settings reloaded from disk", "path", s.filePath)
	s.sendEvent(Event{Type: EventSettingsChanged, Settings: current})

	s.mu.RLock()
	onChange := s.onChange
	s.mu.RUnlock()

	if onChange != nil {
		onChange(current)
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
