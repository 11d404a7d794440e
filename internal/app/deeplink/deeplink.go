// Package deeplink rewrites known YouTube destination URLs into
// platform-specific app URIs.
package deeplink

import (
	"fmt"
	"regexp"

	"github.com/stubhq/stublink/internal/app/ua"
)

// Category names one recognized URL shape.
type Category string

const (
	CategoryChannel  Category = "channel"
	CategoryVideo    Category = "video"
	CategoryShort    Category = "short"
	CategoryLive     Category = "live"
	CategoryPlaylist Category = "playlist"
)

type matcher struct {
	category Category
	pattern  *regexp.Regexp
	// templates are fmt verbs taking the first capture group. A device
	// without its own entry borrows the ios template.
	templates map[ua.Device]string
}

// matchers are tried in declared order; the first match wins even when a
// later pattern would also match.
var matchers = []matcher{
	{
		category: CategoryChannel,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/(?:channel/|c/|@)([A-Za-z0-9_.\-]+)`),
		templates: map[ua.Device]string{
			ua.DeviceIOS:     "youtube://www.youtube.com/channel/%s",
			ua.DeviceAndroid: "vnd.youtube://www.youtube.com/channel/%s",
		},
	},
	{
		category: CategoryVideo,
		pattern:  regexp.MustCompile(`^https?://(?:(?:www\.|m\.)?youtube\.com/watch\?(?:.*&)?v=|youtu\.be/)([A-Za-z0-9_\-]+)`),
		templates: map[ua.Device]string{
			ua.DeviceIOS:     "youtube://www.youtube.com/watch?v=%s",
			ua.DeviceAndroid: "vnd.youtube:%s",
		},
	},
	{
		category: CategoryShort,
		pattern:  regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/shorts/([A-Za-z0-9_\-]+)`),
		templates: map[ua.Device]string{
			ua.DeviceIOS:     "youtube://www.youtube.com/shorts/%s",
			ua.DeviceAndroid: "vnd.youtube://www.youtube.com/shorts/%s",
		},
	},
	{
		category: CategoryLive,
		pattern:  regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/live/([A-Za-z0-9_\-]+)`),
		// No Android mapping is known for live URLs; Android borrows ios.
		templates: map[ua.Device]string{
			ua.DeviceIOS: "youtube://www.youtube.com/live/%s",
		},
	},
	{
		category: CategoryPlaylist,
		pattern:  regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/.*[?&]list=([A-Za-z0-9_\-]+)`),
		templates: map[ua.Device]string{
			ua.DeviceIOS:     "youtube://www.youtube.com/playlist?list=%s",
			ua.DeviceAndroid: "vnd.youtube://www.youtube.com/playlist?list=%s",
		},
	},
}

// Translate maps a destination URL plus device facet to a deep-link URI.
// DeviceOther always gets the original URL back, before any pattern is
// consulted. Unmatched URLs pass through unchanged.
func Translate(destination string, device ua.Device) string {
	if device == ua.DeviceOther {
		return destination
	}

	for _, m := range matchers {
		groups := m.pattern.FindStringSubmatch(destination)
		if groups == nil {
			continue
		}

		tmpl, ok := m.templates[device]
		if !ok {
			tmpl = m.templates[ua.DeviceIOS]
		}
		return fmt.Sprintf(tmpl, groups[1])
	}

	return destination
}
