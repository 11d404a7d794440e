package view

import (
	"bytes"
	"html/template"

	"github.com/stubhq/stublink/internal/app/model"
)

// EmbedPageData provides the fields for the crawler-facing preview page.
// Served to link-preview bots in place of a redirect so they render a
// card for the short link instead of the destination.
type EmbedPageData struct {
	Hostname string
	Key      string
}

// ShortURL is the canonical address of the short link.
func (d EmbedPageData) ShortURL() string {
	if d.Key == model.IndexKey {
		return "https://" + d.Hostname + "/"
	}
	return "https://" + d.Hostname + "/" + d.Key
}

var embedPageTmpl = template.Must(template.New("embed_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<title>{{.Hostname}}</title>
	<meta property="og:type" content="website" />
	<meta property="og:site_name" content="{{.Hostname}}" />
	<meta property="og:title" content="{{.Hostname}}" />
	<meta property="og:url" content="{{.ShortURL}}" />
	<meta name="twitter:card" content="summary_large_image" />
	<meta name="twitter:title" content="{{.Hostname}}" />
	<link rel="canonical" href="{{.ShortURL}}" />
</head>
<body></body>
</html>
`))

// RenderEmbedPage expands the embed template for (hostname, key).
func RenderEmbedPage(data EmbedPageData) (string, error) {
	var buf bytes.Buffer
	if err := embedPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
