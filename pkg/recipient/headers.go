package recipient

import (
	"errors"
	"fmt"
	"io"
	"net/mail"
	"net/textproto"
	"sort"
	"strings"

	"github.com/jhillyerd/enmime/v2"
	"github.com/rs/zerolog/log"
)

// AddressHeaders are the headers scanned for recipients, in order.
var AddressHeaders = []string{"To", "Cc", "Bcc"}

const readReceiptMarker = "report-type=disposition-notification"

// IsReadReceipt reports whether the headers describe a message disposition notification.
func IsReadReceipt(header map[string][]string) bool {
	for _, v := range lookup(header, "Content-Type") {
		if strings.Contains(v, readReceiptMarker) {
			return true
		}
	}
	return false
}

// Addresses decodes the To, Cc and Bcc headers into a single list, in header order.  RFC 2047
// encoded names are decoded.  Repeated values of one header are read as a single address list.  A
// header that cannot be parsed is logged and skipped.
func Addresses(header map[string][]string) ([]*mail.Address, error) {
	raw := &strings.Builder{}
	for _, name := range AddressHeaders {
		var values []string
		for _, v := range lookup(header, name) {
			if v = strings.TrimSpace(unfold(v)); v != "" {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			fmt.Fprintf(raw, "%s: %s\r\n", name, strings.Join(values, ", "))
		}
	}
	if raw.Len() == 0 {
		return nil, nil
	}
	raw.WriteString("\r\n")

	env, err := enmime.ReadEnvelope(strings.NewReader(raw.String()))
	if err != nil {
		return nil, fmt.Errorf("reading recipient headers: %w", err)
	}

	var result []*mail.Address
	for _, name := range AddressHeaders {
		addrs, err := env.AddressList(name)
		if err != nil {
			if !errors.Is(err, mail.ErrHeaderNotPresent) {
				log.Warn().Str("module", "recipient").Str("header", name).Err(err).
					Msg("Skipping undecodable address header")
			}
			continue
		}
		result = append(result, addrs...)
	}
	return result, nil
}

// ParseMessage reads the header of a raw RFC 5322 message.
func ParseMessage(r io.Reader) (map[string][]string, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, fmt.Errorf("reading message: %w", err)
	}
	header := make(map[string][]string, len(env.Root.Header))
	for k, v := range env.Root.Header {
		header[k] = append([]string(nil), v...)
	}
	return header, nil
}

// lookup returns the values of the named header, matching names case insensitively.  Values under
// the canonical spelling come first, other spellings follow in key order.
func lookup(header map[string][]string, name string) []string {
	canonical := textproto.CanonicalMIMEHeaderKey(name)
	result := append([]string(nil), header[canonical]...)
	var keys []string
	for k := range header {
		if k != canonical && textproto.CanonicalMIMEHeaderKey(k) == canonical {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		result = append(result, header[k]...)
	}
	return result
}

// unfold joins folded header lines so a value cannot start a new header.
func unfold(v string) string {
	v = strings.ReplaceAll(v, "\r\n", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	return strings.ReplaceAll(v, "\r", " ")
}
