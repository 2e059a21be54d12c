package ui

import (
	"log"
	"sync"

	"github.com/gen2brain/beeep"
)

// NotificationLevel ranks administrative messages.
type NotificationLevel int

const (
	LevelInfo NotificationLevel = iota
	LevelWarn
	LevelError
)

func (l NotificationLevel) String() string {
	switch l {
	case LevelWarn:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// NotificationManager handles showing notifications across platforms
type NotificationManager struct {
	useNotifications bool
	beepOnMode       bool
	appName          string
	embeddedIcon     []byte
	notify           func(title, message string) error
	beep             func() error
}

// NewNotificationManager creates a new notification manager
func NewNotificationManager(useNotifications, beepOnMode bool, appName string, embeddedIcon []byte) *NotificationManager {
	n := &NotificationManager{
		useNotifications: useNotifications,
		beepOnMode:       beepOnMode,
		appName:          appName,
		embeddedIcon:     embeddedIcon,
		beep:             func() error { return beeep.Beep(beeep.DefaultFreq, 120) },
	}
	n.notify = n.platformNotify
	return n
}

// ShowNotification displays a desktop notification if enabled
func (n *NotificationManager) ShowNotification(title, message string) {
	if !n.useNotifications {
		log.Printf("Notification suppressed (disabled): %s - %s", title, message)
		return
	}
	if err := n.notify(title, message); err != nil {
		log.Printf("Error showing notification: %v", err)
	}
}

// ShowAdminNotification reports application state. Warnings and errors are
// shown even when regular notifications are turned off.
func (n *NotificationManager) ShowAdminNotification(level NotificationLevel, title, message string) {
	log.Printf("Admin notification (%s): %s - %s", level, title, message)
	if level == LevelInfo && !n.useNotifications {
		return
	}
	if err := n.notify(n.appName+": "+title, message); err != nil {
		log.Printf("Error showing admin notification: %v", err)
	}
}

// ModeChanged announces a pass-through mode flip.
func (n *NotificationManager) ModeChanged(passThrough bool) {
	if n.beepOnMode {
		if err := n.beep(); err != nil {
			log.Printf("Warning: mode change beep failed: %v", err)
		}
	}
	title, message := ModeMessage(passThrough)
	n.ShowNotification(title, message)
}

// ModeMessage is the title and body announcing a mode.
func ModeMessage(passThrough bool) (string, string) {
	if passThrough {
		return "Game Mode On", "Function keys pass straight through. Press the toggle hotkey again to restore Power Keys."
	}
	return "Game Mode Off", "Power Keys is intercepting function keys again."
}

var (
	globalMu                  sync.RWMutex
	globalNotificationManager *NotificationManager
)

// InitGlobalNotifications initializes the global notification manager
func InitGlobalNotifications(useNotifications, beepOnMode bool, appName string, embeddedIcon []byte) *NotificationManager {
	n := NewNotificationManager(useNotifications, beepOnMode, appName, embeddedIcon)
	globalMu.Lock()
	globalNotificationManager = n
	globalMu.Unlock()
	return n
}

func global() *NotificationManager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalNotificationManager
}

// ShowNotification uses the global manager.
func ShowNotification(title, message string) {
	if n := global(); n != nil {
		n.ShowNotification(title, message)
		return
	}
	log.Printf("Notification not shown (manager not initialized): %s - %s", title, message)
}

// ShowAdminNotification uses the global manager.
func ShowAdminNotification(level NotificationLevel, title, message string) {
	if n := global(); n != nil {
		n.ShowAdminNotification(level, title, message)
		return
	}
	log.Printf("Admin notification not shown (manager not initialized, %s): %s - %s", level, title, message)
}
