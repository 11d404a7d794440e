package view

import (
	"bytes"
	"html/template"
)

const defaultFallbackDelayMS = 1500

// DeepLinkPageData provides the fields for the app hand-off page.
type DeepLinkPageData struct {
	// DeepLink is the platform-specific app URI attempted first.
	DeepLink string
	// Fallback is the plain destination used when the app did not open
	// before the delay elapsed.
	Fallback string
	// FallbackDelayMS bounds the wait; a sane default applies when zero.
	FallbackDelayMS int
}

var deepLinkPageTmpl = template.Must(template.New("deeplink_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<meta name="robots" content="noindex" />
	<title>Opening…</title>
</head>
<body>
	<script>
		(function() {
			var fallback = {{.Fallback}};
			var timer = setTimeout(function() {
				window.location.replace(fallback);
			}, {{.FallbackDelayMS}});

			// A successful app launch hides the page; cancel the timer so
			// a late fallback cannot hijack the session afterwards.
			window.addEventListener("pagehide", function() {
				clearTimeout(timer);
			});
			document.addEventListener("visibilitychange", function() {
				if (document.visibilityState === "hidden") {
					clearTimeout(timer);
				}
			});

			window.location.href = {{.DeepLink}};
		})();
	</script>
	<noscript>
		<meta http-equiv="refresh" content="0;url={{.Fallback}}" />
	</noscript>
</body>
</html>
`))

// RenderDeepLinkPage expands the deep-link hand-off template.
func RenderDeepLinkPage(data DeepLinkPageData) (string, error) {
	if data.FallbackDelayMS <= 0 {
		data.FallbackDelayMS = defaultFallbackDelayMS
	}
	var buf bytes.Buffer
	if err := deepLinkPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
