package view

import (
	"bytes"
	"html/template"
)

// PasswordPageData provides the dynamic fields for the password challenge.
type PasswordPageData struct {
	// Prefill is the previously attempted password, echoed back into the
	// form so the visitor can correct it.
	Prefill string
}

var passwordPageTmpl = template.Must(template.New("password_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<meta name="robots" content="noindex" />
	<title>Password required</title>
	<style>
		:root {
			--bg: #090a0f;
			--card: rgba(255, 255, 255, 0.05);
			--border: rgba(255, 255, 255, 0.15);
			--text: #e7ecff;
			--muted: #a1acc5;
			--accent: #7dd3fc;
			--accent-strong: #38bdf8;
			font-family: "Inter", -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
		}
		* { box-sizing: border-box; }
		body {
			margin: 0;
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
			background: radial-gradient(circle at 20% 20%, #111827, #030712 60%);
			color: var(--text);
		}
		.card {
			background: var(--card);
			border: 1px solid var(--border);
			border-radius: 18px;
			padding: 32px;
			width: min(420px, 92vw);
			box-shadow: 0 45px 100px rgba(0,0,0,0.35);
			backdrop-filter: blur(18px);
		}
		h1 { font-size: 1.4rem; margin-bottom: 6px; }
		p { color: var(--muted); margin-top: 0; }
		input[type="password"] {
			width: 100%;
			height: 46px;
			margin-top: 18px;
			padding: 0 14px;
			border-radius: 12px;
			border: 1px solid var(--border);
			background: rgba(255, 255, 255, 0.04);
			color: var(--text);
			font-size: 1rem;
		}
		button {
			width: 100%;
			height: 48px;
			margin-top: 14px;
			border: none;
			border-radius: 999px;
			background: linear-gradient(120deg, var(--accent), var(--accent-strong));
			color: #050708;
			font-weight: 600;
			font-size: 1rem;
			cursor: pointer;
		}
	</style>
</head>
<body>
	<div class="card">
		<h1>This link is protected</h1>
		<p>Enter the password to continue to the destination.</p>
		<form method="GET">
			<input type="password" name="password" value="{{.Prefill}}" placeholder="Password" autofocus />
			<button type="submit">Unlock</button>
		</form>
	</div>
</body>
</html>
`))

// RenderPasswordPage expands the password challenge template.
func RenderPasswordPage(data PasswordPageData) (string, error) {
	var buf bytes.Buffer
	if err := passwordPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
