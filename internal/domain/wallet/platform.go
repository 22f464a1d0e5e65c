package wallet

import (
	"regexp"
	"strings"
)

type Platform string

const (
	PlatformApple  Platform = "apple"
	PlatformGoogle Platform = "google"
)

var appleDevice = regexp.MustCompile(`(?i)iphone|ipad|ipod`)

// IsAppleRequest decides the branch. An explicit "apple" override always wins
// over user-agent sniffing.
func IsAppleRequest(override, userAgent string) bool {
	if strings.EqualFold(strings.TrimSpace(override), string(PlatformApple)) {
		return true
	}
	return appleDevice.MatchString(userAgent)
}

func SelectPlatform(override, userAgent string) Platform {
	if IsAppleRequest(override, userAgent) {
		return PlatformApple
	}
	return PlatformGoogle
}
