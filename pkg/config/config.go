// Package config loads rcptcontact configuration from the environment.
package config

import (
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	prefix      = "rcptcontact"
	tableFormat = `rcptcontact is configured via the environment. The following environment
variables can be used:

KEY	DEFAULT	REQUIRED	DESCRIPTION
{{range .}}{{usage_key .}}	{{usage_default .}}	{{usage_required .}}	{{usage_description .}}
{{end}}`
)

var (
	// Version of this build, set by main
	Version = ""

	// BuildDate for this build, set by main
	BuildDate = ""
)

// Root wraps all other configurations.
type Root struct {
	LogLevel    string `required:"true" default:"info" desc:"debug, info, warn, or error"`
	Plugin      Plugin
	AddressBook AddressBook
	Session     Session
	Prefs       Prefs
	Web         Web
	Lua         Lua
}

// Plugin contains the recipient-to-contact behavior settings.
type Plugin struct {
	EnabledByDefault         bool     `default:"false" desc:"Enable for users without an explicit preference?"`
	AddressBooks             []string `desc:"Address book IDs to scan, empty uses autocomplete list"`
	AutocompleteAddressBooks []string `default:"sql" desc:"Autocomplete address book IDs"`
	UseGroups                bool     `default:"false" desc:"Offer address book group selection?"`
}

// AddressBook contains the address book source configuration.
type AddressBook struct {
	Sources []string          `required:"true" default:"sql:sql,collected:memory" desc:"Sources in lookup order, id:type pairs"`
	Names   map[string]string `default:"sql:Personal Addresses,collected:Collected Recipients" desc:"Source display names, id:name pairs"`
	SQLPath string            `required:"true" default:"/tmp/rcptcontact/contacts.db" desc:"SQLite address book path"`
}

// Session contains the session buffer store configuration.
type Session struct {
	Type          string        `required:"true" default:"memory" desc:"memory or redis"`
	TTL           time.Duration `required:"true" default:"24h" desc:"Idle session lifetime"`
	SweepInterval time.Duration `default:"1m" desc:"Expired memory session sweep interval, 0 disables"`
	RedisAddr     string        `default:"localhost:6379" desc:"Redis host:port"`
	RedisPassword string        `desc:"Redis password"`
	RedisDB       int           `default:"0" desc:"Redis database number"`
}

// Prefs contains the user preference store configuration.
type Prefs struct {
	Type string `required:"true" default:"memory" desc:"memory or sql"`
}

// Web contains the HTTP server configuration.
type Web struct {
	Addr           string `required:"true" default:"0.0.0.0:9010" desc:"Web server IP4 host:port"`
	BasePath       string `default:"" desc:"Base path prefix for routes"`
	MonitorHistory int    `required:"true" default:"30" desc:"Monitor remembered events"`
	CookieSecure   bool   `default:"false" desc:"Mark session cookie Secure?"`
}

// Lua contains the Lua extension host configuration.
type Lua struct {
	Path string `default:"rcptcontact.lua" desc:"Lua script path"`
}

// Process loads and parses configuration from the environment.
func Process() (*Root, error) {
	c := &Root{}
	err := envconfig.Process(prefix, c)
	c.LogLevel = strings.ToLower(c.LogLevel)
	return c, err
}

// Usage prints out the envconfig usage to Stderr.
func Usage() {
	tabs := tabwriter.NewWriter(os.Stderr, 1, 0, 4, ' ', 0)
	if err := envconfig.Usagef(prefix, &Root{}, tabs, tableFormat); err != nil {
		log.Fatalf("Unable to parse env config: %v", err)
	}
	tabs.Flush()
}
