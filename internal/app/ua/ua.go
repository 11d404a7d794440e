// Package ua classifies user-agent strings for the resolution path. The
// bot detector and device classifier are pure functions over a fixed
// signature set; the richer Descriptor used for click analytics is parsed
// with uap-go.
package ua

import (
	"regexp"
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
)

// Device is the coarse platform facet used to pick deep-link templates.
type Device string

const (
	DeviceIOS     Device = "ios"
	DeviceAndroid Device = "android"
	DeviceOther   Device = "other"
)

// botSignatures covers generic markers, major search crawlers,
// social-preview fetchers and LLM-agent fetchers. The set is versioned
// with the code, not configuration.
var botSignatures = regexp.MustCompile(`(?i)bot|crawler|spider|chatgpt|facebookexternalhit|WhatsApp|google|baidu|bing|msn|duckduckbot|teoma|slurp|yandex|MetaInspector|Twitterbot|Yahoo|AhrefsBot`)

// DetectBot reports whether the user-agent belongs to an automated
// crawler. An absent user-agent is not a bot.
func DetectBot(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	return botSignatures.MatchString(userAgent)
}

// ClassifyDevice maps a user-agent to a Device facet. Total: anything not
// recognizably an Apple mobile device or Android is DeviceOther.
func ClassifyDevice(userAgent string) Device {
	lower := strings.ToLower(userAgent)
	switch {
	case strings.Contains(lower, "iphone"),
		strings.Contains(lower, "ipad"),
		strings.Contains(lower, "ipod"):
		return DeviceIOS
	case strings.Contains(lower, "android"):
		return DeviceAndroid
	default:
		return DeviceOther
	}
}

// Descriptor is the parsed user-agent attached to click events.
type Descriptor struct {
	Browser        string `json:"browser,omitempty"`
	BrowserVersion string `json:"browser_version,omitempty"`
	OS             string `json:"os,omitempty"`
	Device         string `json:"device,omitempty"`
}

var parser = uaparser.NewFromSaved()

// Describe parses a raw user-agent into a Descriptor. Best effort: empty
// or unparseable input yields an empty Descriptor.
func Describe(userAgent string) Descriptor {
	if userAgent == "" {
		return Descriptor{}
	}

	client := parser.Parse(userAgent)
	return Descriptor{
		Browser:        familyOrEmpty(client.UserAgent.Family),
		BrowserVersion: client.UserAgent.ToVersionString(),
		OS:             familyOrEmpty(client.Os.Family),
		Device:         familyOrEmpty(client.Device.Family),
	}
}

func familyOrEmpty(family string) string {
	if family == "Other" {
		return ""
	}
	return family
}
