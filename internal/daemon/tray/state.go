// Package tray implements the system tray icon and menu for the daemon.
package tray

// DaemonState provides access to daemon state for the tray.
type DaemonState interface {
	URL() string
	Refresh()
	RequestShutdown()
}
