// Package main implements a command line client for the rcptcontact REST API
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"

	"github.com/google/subcommands"
	"github.com/inbucket/rcptcontact/pkg/rest/client"
)

var (
	host     = flag.String("host", "localhost", "host/IP of rcptcontact server")
	port     = flag.Uint("port", 9010, "HTTP port of rcptcontact server")
	session  = flag.String("session", "", "webmail session ID to act for")
	user     = flag.String("user", "", "webmail user to act for")
	language = flag.String("lang", "", "language of server messages, ex: it_IT")
)

// Allow subcommands to accept regular expressions as flags
type regexFlag struct {
	*regexp.Regexp
}

func (r *regexFlag) Defined() bool {
	return r.Regexp != nil
}

func (r *regexFlag) Set(pattern string) error {
	if pattern == "" {
		r.Regexp = nil
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	r.Regexp = re
	return nil
}

func (r *regexFlag) String() string {
	if r.Regexp == nil {
		return ""
	}
	return r.Regexp.String()
}

// regexFlag must implement flag.Value
var _ flag.Value = &regexFlag{}

func main() {
	// Important top-level flags
	subcommands.ImportantFlag("host")
	subcommands.ImportantFlag("port")
	subcommands.ImportantFlag("session")

	// Setup standard helpers
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	// Setup my commands
	subcommands.Register(&sendCmd{}, "")
	subcommands.Register(&pendingCmd{}, "")
	subcommands.Register(&groupsCmd{}, "")
	subcommands.Register(&reviewCmd{}, "")

	// Parse and execute
	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

func baseURL() string {
	return "http://" + net.JoinHostPort(*host, strconv.FormatUint(uint64(*port), 10))
}

// newClient builds a REST client acting for the session named by the top-level flags.
func newClient() (*client.Client, error) {
	if *session == "" {
		return nil, fmt.Errorf("-session is required")
	}
	return client.New(baseURL(),
		client.WithClientOptsSession(*session),
		client.WithClientOptsUser(*user),
		client.WithClientOptsLanguage(*language))
}

func fatal(msg string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	return subcommands.ExitFailure
}

func usage(msg string) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, msg)
	return subcommands.ExitUsageError
}
