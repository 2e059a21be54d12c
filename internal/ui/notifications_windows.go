//go:build windows

package ui

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-toast/toast"
)

func (n *NotificationManager) platformNotify(title, message string) error {
	var iconPath string
	if len(n.embeddedIcon) > 0 {
		var err error
		iconPath, err = writeTempIcon(n.embeddedIcon)
		if err != nil {
			log.Printf("Error writing temporary icon: %v", err)
			iconPath = ""
		} else {
			time.AfterFunc(10*time.Second, func() {
				if errRem := os.Remove(iconPath); errRem != nil && !os.IsNotExist(errRem) {
					log.Printf("Error removing temporary icon file %s: %v", iconPath, errRem)
				}
			})
		}
	}

	notification := toast.Notification{
		AppID:   n.appName,
		Title:   title,
		Message: message,
		Icon:    iconPath,
	}
	if err := notification.Push(); err != nil {
		if strings.Contains(err.Error(), "notification platform is unavailable") {
			log.Println("Toast notification failed: Platform unavailable (Notifications might be disabled in Windows Settings).")
		}
		return fmt.Errorf("toast: %w", err)
	}
	return nil
}

func writeTempIcon(iconData []byte) (string, error) {
	if len(iconData) == 0 {
		return "", fmt.Errorf("cannot write empty icon data")
	}
	tmpFile, err := os.CreateTemp("", "powerkey-icon-*.ico")
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	if _, err := tmpFile.Write(iconData); err != nil {
		_ = os.Remove(tmpFile.Name())
		return "", err
	}
	absPath, err := filepath.Abs(tmpFile.Name())
	if err != nil {
		log.Printf("Warning: Could not get absolute path for temp icon '%s': %v", tmpFile.Name(), err)
		return tmpFile.Name(), nil
	}
	return absPath, nil
}
