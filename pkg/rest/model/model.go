// Package model holds the JSON shapes exchanged with the webmail host and its clients.
package model

import (
	"encoding/json"
	"fmt"
)

// Monitor event variants.
const (
	VariantPending = "contacts-pending"
	VariantCleared = "contacts-cleared"
)

// JSONMonitorEventV1 notifies a monitoring client about its session buffer.
type JSONMonitorEventV1 struct {
	// Event variant: `contacts-pending`, `contacts-cleared`.
	Variant string `json:"variant"`
	Count   int    `json:"count"`
}

// JSONMessageSentV1 is the body of the message_sent hook.
type JSONMessageSentV1 struct {
	Headers map[string]HeaderValues `json:"headers"`
}

// Header converts Headers into a plain header map.
func (m *JSONMessageSentV1) Header() map[string][]string {
	h := make(map[string][]string, len(m.Headers))
	for k, v := range m.Headers {
		h[k] = []string(v)
	}
	return h
}

// JSONScriptsV1 lists the client scripts the host should include in a rendered page.
type JSONScriptsV1 struct {
	Scripts []string `json:"scripts"`
}

// HeaderValues accepts either a single string or a list of strings.
type HeaderValues []string

// UnmarshalJSON implements json.Unmarshaler.
func (hv *HeaderValues) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*hv = HeaderValues{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("header value must be a string or list of strings: %w", err)
	}
	*hv = many
	return nil
}
