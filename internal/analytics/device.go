package analytics

import "strings"

// Device categories produced by DetectDevice.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// DetectDevice maps a user-agent string to a coarse device category via
// case-insensitive substring matching. Rules are checked in order and the
// first match wins; "mobile" outranks "tablet" outranks "desktop". Callers
// with no user agent at all report DeviceUnknown themselves.
func DetectDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "mobile"),
		strings.Contains(ua, "android"),
		strings.Contains(ua, "iphone"):
		return DeviceMobile
	case strings.Contains(ua, "tablet"),
		strings.Contains(ua, "ipad"):
		return DeviceTablet
	case strings.Contains(ua, "windows"),
		strings.Contains(ua, "mac"),
		strings.Contains(ua, "linux"):
		return DeviceDesktop
	default:
		return DeviceUnknown
	}
}
