package ua

import "testing"

func TestDetectBot(t *testing.T) {
	cases := []struct {
		name      string
		userAgent string
		want      bool
	}{
		{"empty", "", false},
		{"generic bot", "SomeBot/1.0", true},
		{"case insensitive", "AHREFSBOT/7.0", true},
		{"crawler keyword", "my-crawler (+https://example.com)", true},
		{"spider keyword", "Spider-Check 2.1", true},
		{"facebook preview", "facebookexternalhit/1.1", true},
		{"whatsapp preview", "WhatsApp/2.23.20", true},
		{"twitter preview", "Twitterbot/1.0", true},
		{"llm fetcher", "Mozilla/5.0 ChatGPT-User/1.0", true},
		{"search engine", "Mozilla/5.0 (compatible; Googlebot/2.1)", true},
		{"regular chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", false},
		{"unrecognized", "totally-custom-client/0.1", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectBot(tc.userAgent); got != tc.want {
				t.Fatalf("DetectBot(%q) = %v, want %v", tc.userAgent, got, tc.want)
			}
		})
	}
}

func TestClassifyDevice(t *testing.T) {
	cases := []struct {
		name      string
		userAgent string
		want      Device
	}{
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", DeviceIOS},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X)", DeviceIOS},
		{"ipod", "Mozilla/5.0 (iPod touch; CPU iPhone OS 15_8 like Mac OS X)", DeviceIOS},
		{"android phone", "Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile", DeviceAndroid},
		{"android tablet", "Mozilla/5.0 (Linux; Android 13; SM-X910)", DeviceAndroid},
		{"desktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)", DeviceOther},
		{"empty", "", DeviceOther},
		{"case insensitive", "SOMETHING ANDROID SOMETHING", DeviceAndroid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyDevice(tc.userAgent); got != tc.want {
				t.Fatalf("ClassifyDevice(%q) = %q, want %q", tc.userAgent, got, tc.want)
			}
		})
	}
}

func TestClassifyDeviceTotal(t *testing.T) {
	// Whatever the input, a facet always comes back.
	for _, input := range []string{"", "\x00\xff", "Mozilla", "🤖"} {
		switch ClassifyDevice(input) {
		case DeviceIOS, DeviceAndroid, DeviceOther:
		default:
			t.Fatalf("ClassifyDevice(%q) returned an unknown facet", input)
		}
	}
}

func TestDescribe(t *testing.T) {
	desc := Describe("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
	if desc.OS == "" {
		t.Fatal("expected OS family to be detected for a Safari iPhone UA")
	}
	if desc.Browser == "" {
		t.Fatal("expected browser family to be detected for a Safari iPhone UA")
	}

	empty := Describe("")
	if empty != (Descriptor{}) {
		t.Fatalf("Describe(\"\") = %+v, want zero descriptor", empty)
	}
}
