package webui

import "encoding/json"

type jsonSection struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type jsonOption struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type jsonBlock struct {
	Name    string       `json:"name"`
	Options []jsonOption `json:"options"`
}

type jsonSaved struct {
	Section string          `json:"section"`
	Prefs   map[string]bool `json:"prefs"`
}

type jsonStatus struct {
	Version      string          `json:"version"`
	BuildDate    string          `json:"build-date"`
	WebListener  string          `json:"web-listener"`
	AddressBooks []string        `json:"address-books"`
	ScanBooks    []string        `json:"scan-books"`
	SessionStore string          `json:"session-store"`
	PrefsStore   string          `json:"prefs-store"`
	Metrics      json.RawMessage `json:"metrics"`
}
