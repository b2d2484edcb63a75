//go:build linux

package platform

import (
	"github.com/godbus/dbus/v5"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyCall   = notifyDest + ".Notify"
	hintImage    = "image-path"
	hintCategory = "category"
)

// notifyHints marks the notice as a finished transfer and attaches the icon
// when one is set.
func notifyHints(opts Options) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		hintCategory: dbus.MakeVariant("transfer.complete"),
	}
	if opts.IconPath != "" {
		hints[hintImage] = dbus.MakeVariant(opts.IconPath)
	}
	return hints
}

// Notify sends a desktop notification using the Freedesktop.org notification spec.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	call := conn.Object(notifyDest, notifyPath).Call(notifyCall, 0,
		AppName, uint32(0), opts.IconPath, title, body, []string{}, notifyHints(opts), int32(opts.timeout().Milliseconds()))
	return call.Err
}
