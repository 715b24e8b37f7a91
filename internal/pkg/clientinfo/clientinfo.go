package clientinfo

import (
	"net"
	"net/http"
	"strings"
)

type DeviceType string

const (
	DeviceDesktop DeviceType = "Desktop"
	DeviceMobile  DeviceType = "Mobile"
	DeviceTablet  DeviceType = "Tablet"
)

func (d DeviceType) IsValid() bool {
	switch d {
	case DeviceDesktop, DeviceMobile, DeviceTablet:
		return true
	}
	return false
}

// DeviceInfo is the optional device payload sent by the client on check-in/out.
type DeviceInfo struct {
	Type      string `json:"type,omitempty"`
	OS        string `json:"os,omitempty"`
	Browser   string `json:"browser,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Header priority for the client address, first non-empty wins.
var ipHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"X-Client-IP",
	"CF-Connecting-IP",
}

// IP returns the best-effort client address for r.
func IP(r *http.Request) string {
	for _, h := range ipHeaders {
		v := strings.TrimSpace(r.Header.Get(h))
		if v == "" {
			continue
		}
		// X-Forwarded-For is a chain; the first hop is the client.
		if first, _, ok := strings.Cut(v, ","); ok {
			v = strings.TrimSpace(first)
		}
		if v != "" {
			return v
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

var (
	tabletMarkers = []string{"ipad", "tablet", "kindle", "silk", "playbook"}
	mobileMarkers = []string{"mobi", "iphone", "ipod", "android", "blackberry", "windows phone", "opera mini"}
)

// Classify maps a user agent string to a device type by substring match.
func Classify(userAgent string) DeviceType {
	ua := strings.ToLower(userAgent)
	if containsAny(ua, tabletMarkers) {
		return DeviceTablet
	}
	// Android tablets omit "mobile".
	if strings.Contains(ua, "android") && !strings.Contains(ua, "mobile") {
		return DeviceTablet
	}
	if containsAny(ua, mobileMarkers) {
		return DeviceMobile
	}
	return DeviceDesktop
}

// Describe builds the stored device descriptor. The client payload wins over
// the request user agent.
func Describe(info *DeviceInfo, userAgent string) string {
	var (
		kind    DeviceType
		os      string
		browser string
	)

	switch {
	case info != nil && DeviceType(normalizeType(info.Type)).IsValid():
		kind = DeviceType(normalizeType(info.Type))
		os, browser = info.OS, info.Browser
	case info != nil && info.UserAgent != "":
		kind = Classify(info.UserAgent)
		os, browser = info.OS, info.Browser
		if os == "" {
			os = detectOS(info.UserAgent)
		}
		if browser == "" {
			browser = detectBrowser(info.UserAgent)
		}
	case userAgent != "":
		kind = Classify(userAgent)
		os = detectOS(userAgent)
		browser = detectBrowser(userAgent)
	default:
		return ""
	}

	var extra []string
	if os != "" {
		extra = append(extra, os)
	}
	if browser != "" {
		extra = append(extra, browser)
	}
	if len(extra) == 0 {
		return string(kind)
	}
	return string(kind) + " (" + strings.Join(extra, ", ") + ")"
}

func normalizeType(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	return strings.ToUpper(t[:1]) + strings.ToLower(t[1:])
}

func detectOS(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ipod"):
		return "iOS"
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "mac os"), strings.Contains(ua, "macintosh"):
		return "macOS"
	case strings.Contains(ua, "linux"):
		return "Linux"
	}
	return ""
}

func detectBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	// Order matters: Edge and Opera also advertise Chrome, Chrome advertises Safari.
	switch {
	case strings.Contains(ua, "edg/"):
		return "Edge"
	case strings.Contains(ua, "opr/"), strings.Contains(ua, "opera"):
		return "Opera"
	case strings.Contains(ua, "firefox/"):
		return "Firefox"
	case strings.Contains(ua, "chrome/"), strings.Contains(ua, "crios/"):
		return "Chrome"
	case strings.Contains(ua, "safari/"):
		return "Safari"
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
