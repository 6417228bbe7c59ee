package web

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
)

// maxFormBytes bounds request bodies read by ReadForm.
const maxFormBytes = 1 << 20

// RenderJSON sets the correct HTTP headers for JSON, then writes the specified data (typically a
// struct) encoded in JSON.
func RenderJSON(w http.ResponseWriter, data any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Expires", "-1")
	enc := json.NewEncoder(w)
	return enc.Encode(data)
}

// ReadForm returns the fields posted with req.  JSON bodies are flattened into the bracketed key
// layout a browser form produces, so `{"_contacts":{"0":{"name":"A"}}}` yields the single field
// `_contacts[0][name]=A`.
func ReadForm(req *http.Request) (url.Values, error) {
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		if err := req.ParseForm(); err != nil {
			return nil, err
		}
		return req.Form, nil
	}

	dec := json.NewDecoder(io.LimitReader(req.Body, maxFormBytes))
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode JSON body: %w", err)
	}
	form := url.Values{}
	if body == nil {
		return form, nil
	}
	if _, ok := body.(map[string]any); !ok {
		return nil, fmt.Errorf("JSON body must be an object, got %T", body)
	}
	flatten(form, "", body)
	// Query parameters fill in for fields the body omits.
	for k, vs := range req.URL.Query() {
		if _, ok := form[k]; !ok {
			form[k] = vs
		}
	}
	return form, nil
}

func flatten(form url.Values, prefix string, v any) {
	key := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "[" + k + "]"
	}

	switch v := v.(type) {
	case map[string]any:
		for k, child := range v {
			flatten(form, key(k), child)
		}
	case []any:
		for i, child := range v {
			flatten(form, key(strconv.Itoa(i)), child)
		}
	case string:
		form.Add(prefix, v)
	case json.Number:
		form.Add(prefix, v.String())
	case bool:
		if v {
			form.Add(prefix, "1")
		} else {
			form.Add(prefix, "")
		}
	case nil:
		form.Add(prefix, "")
	}
}
