package rest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/inbucket/rcptcontact/pkg/addressbook"
	"github.com/inbucket/rcptcontact/pkg/config"
	"github.com/inbucket/rcptcontact/pkg/msghub"
	"github.com/inbucket/rcptcontact/pkg/plugin"
	"github.com/inbucket/rcptcontact/pkg/prefs"
	"github.com/inbucket/rcptcontact/pkg/server/web"
	"github.com/inbucket/rcptcontact/pkg/session/mem"
	"github.com/inbucket/rcptcontact/pkg/test"
)

const testSession = "test-session"

// fixture is a web server wired to a plugin backed by in-memory stores.
type fixture struct {
	book     *test.BookStub
	other    *test.BookStub
	sessions *mem.Store
	prefs    *prefs.MemStore
	hub      *msghub.Hub
	plugin   *plugin.Plugin
}

func setupWebServer(t *testing.T, cfg config.Plugin) *fixture {
	t.Helper()
	f := &fixture{
		book:     test.NewBook("known@example.com"),
		other:    test.NewBook(),
		sessions: mem.NewStore(0),
		prefs:    prefs.NewMemStore(),
		hub:      msghub.New(10),
	}
	books := addressbook.NewRegistry()
	books.Add("sql", "Personal Addresses", f.book)
	books.Add("other", "Other", f.other)
	f.plugin = plugin.New(cfg, books, f.sessions, f.prefs)

	// The hub outlives the test, async host events may still be in flight when it ends.
	go f.hub.Start(context.Background())

	// Router is shared, so routes accumulate across tests; the first match wins and every
	// registration points at the same handlers.
	SetupRoutes(web.Router)
	web.NewServer(&config.Root{}, make(chan bool), f.hub, f.prefs, f.plugin.Init, f.hub.Init)
	return f
}

func enabledConfig() config.Plugin {
	return config.Plugin{
		EnabledByDefault:         true,
		AutocompleteAddressBooks: []string{"sql", "other"},
	}
}

func testRequest(method, url, contentType, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(web.SessionHeader, testSession)
	w := httptest.NewRecorder()
	web.Router.ServeHTTP(w, req)
	return w
}

func testRestGet(url string) *httptest.ResponseRecorder {
	return testRequest("GET", url, "", "")
}

func testRestPost(url, contentType, body string) *httptest.ResponseRecorder {
	return testRequest("POST", url, contentType, body)
}

func testLocalizedPost(t *testing.T, url string, body io.Reader, lang string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", url, body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(web.SessionHeader, testSession)
	req.Header.Set(web.LanguageHeader, lang)
	w := httptest.NewRecorder()
	web.Router.ServeHTTP(w, req)
	return w
}

func decodedBoolEquals(t *testing.T, json interface{}, path string, want bool) {
	t.Helper()
	els := strings.Split(path, "/")
	val, msg := getDecodedPath(json, els...)
	if msg != "" {
		t.Errorf("JSON result%s", msg)
		return
	}
	if got, ok := val.(bool); ok {
		if got == want {
			return
		}
	}
	t.Errorf("JSON result/%s == %v (%T), want: %v", path, val, val, want)
}

func decodedNumberEquals(t *testing.T, json interface{}, path string, want float64) {
	t.Helper()
	els := strings.Split(path, "/")
	val, msg := getDecodedPath(json, els...)
	if msg != "" {
		t.Errorf("JSON result%s", msg)
		return
	}
	got, ok := val.(float64)
	if ok {
		if got == want {
			return
		}
	}
	t.Errorf("JSON result/%s == %v (%T) %v (int64),\nwant: %v / %v",
		path, val, val, int64(got), want, int64(want))
}

func decodedStringEquals(t *testing.T, json interface{}, path string, want string) {
	t.Helper()
	els := strings.Split(path, "/")
	val, msg := getDecodedPath(json, els...)
	if msg != "" {
		t.Errorf("JSON result%s", msg)
		return
	}
	if got, ok := val.(string); ok {
		if got == want {
			return
		}
	}
	t.Errorf("JSON result/%s == %v (%T), want: %v", path, val, val, want)
}

// getDecodedPath recursively navigates the specified path, returing the requested element.  If
// something goes wrong, the returned string will contain an explanation.
//
// Named path elements require the parent element to be a map[string]interface{}, numbers in square
// brackets require the parent element to be a []interface{}.
//
//     getDecodedPath(o, "users", "[1]", "name")
//
// is equivalent to the JavaScript:
//
//     o.users[1].name
//
func getDecodedPath(o interface{}, path ...string) (interface{}, string) {
	if len(path) == 0 {
		return o, ""
	}
	if o == nil {
		return nil, " is nil"
	}
	key := path[0]
	present := false
	var val interface{}
	if key[0] == '[' {
		// Expecting slice.
		index, err := strconv.Atoi(strings.Trim(key, "[]"))
		if err != nil {
			return nil, "/" + key + " is not a slice index"
		}
		oslice, ok := o.([]interface{})
		if !ok {
			return nil, " is not a slice"
		}
		if index >= len(oslice) {
			return nil, "/" + key + " is out of bounds"
		}
		val, present = oslice[index], true
	} else {
		// Expecting map.
		omap, ok := o.(map[string]interface{})
		if !ok {
			return nil, " is not a map"
		}
		val, present = omap[key]
	}
	if !present {
		return nil, "/" + key + " is missing"
	}
	result, msg := getDecodedPath(val, path[1:]...)
	if msg != "" {
		return nil, "/" + key + msg
	}
	return result, ""
}
