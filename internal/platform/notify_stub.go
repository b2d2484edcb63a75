//go:build !linux && !darwin && !windows

package platform

// Notify drops the notification; there is no notification service here.
func Notify(title, body string, opts Options) error {
	return nil
}
