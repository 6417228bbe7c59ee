package test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/inbucket/rcptcontact/pkg/addressbook"
	abmem "github.com/inbucket/rcptcontact/pkg/addressbook/mem"
	absql "github.com/inbucket/rcptcontact/pkg/addressbook/sql"
	"github.com/inbucket/rcptcontact/pkg/config"
	"github.com/inbucket/rcptcontact/pkg/database"
	"github.com/inbucket/rcptcontact/pkg/dialog"
	"github.com/inbucket/rcptcontact/pkg/rest/client"
	"github.com/inbucket/rcptcontact/pkg/server"
	"github.com/inbucket/rcptcontact/pkg/session"
	sessmem "github.com/inbucket/rcptcontact/pkg/session/mem"
	"github.com/jhillyerd/goldiff"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/suite"
)

const (
	webAddr     = "127.0.0.1:9011"
	restBaseURL = "http://" + webAddr + "/"
)

type IntegrationSuite struct {
	suite.Suite
	services   *server.Services
	stopServer func()
}

func (s *IntegrationSuite) SetupSuite() {
	services, stopServer, err := startServer(filepath.Join(s.T().TempDir(), "contacts.db"))
	s.Require().NoError(err)
	s.services = services
	s.stopServer = stopServer
}

func (s *IntegrationSuite) TearDownSuite() {
	s.stopServer()
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) TestWorkflow() {
	ctx := context.Background()
	c, err := client.New(restBaseURL, client.WithClientOptsSession("integration"),
		client.WithClientOptsUser("ann"))
	s.Require().NoError(err)

	// Seed the SQL book with a known contact and a group.
	book, err := s.services.Books.Get(addressbook.LegacySQLName)
	s.Require().NoError(err)
	_, err = book.Insert(ctx, addressbook.Record{Name: "Known Person", Email: "known@example.com"})
	s.Require().NoError(err)
	friends, err := book.(addressbook.GroupCreator).CreateGroup(ctx, "Friends")
	s.Require().NoError(err)

	// Nothing pending yet.
	pending, err := c.Pending(ctx)
	s.Require().NoError(err)
	s.False(pending)

	// Send mail.
	s.Require().NoError(c.SendRaw(ctx, readTestData("sent.txt")))
	pending, err = c.Pending(ctx)
	s.Require().NoError(err)
	s.True(pending)

	// Review in the dialog.
	d := dialog.New(c, nil, "en_US")
	open, err := d.Open(ctx)
	s.Require().NoError(err)
	s.Require().True(open)
	got := &bytes.Buffer{}
	formatDialog(got, d)

	s.Require().NoError(d.Edit("0", func(r *dialog.Draft) {
		r.FirstName = "André"
		r.Surname = "Gide"
		r.Group = friends.ID
	}))
	s.Require().NoError(d.SetAddressBook(ctx, "1", "collected"))
	formatDialog(got, d)

	out, err := d.Save(ctx)
	s.Require().NoError(err)
	formatOutcome(got, out, d)

	// Compare to golden.
	goldiff.File(s.T(), got.Bytes(), "testdata", "workflow.golden")

	// The buffer was consumed.
	pending, err = c.Pending(ctx)
	s.Require().NoError(err)
	s.False(pending)

	// Contacts landed in the selected books.
	n, err := book.Search(ctx, addressbook.FieldEmail, "ANDRE@example.org")
	s.Require().NoError(err)
	s.Equal(1, n)
	members, err := book.(*absql.Book).Members(ctx, friends.ID)
	s.Require().NoError(err)
	s.Len(members, 1)
	collected, err := s.services.Books.Get("collected")
	s.Require().NoError(err)
	n, err = collected.Search(ctx, addressbook.FieldEmail, "carol@example.net")
	s.Require().NoError(err)
	s.Equal(1, n)

	// Every recipient of the next message is known now.
	s.Require().NoError(c.SendRaw(ctx, readTestData("known.txt")))
	pending, err = c.Pending(ctx)
	s.Require().NoError(err)
	s.False(pending)
}

func formatDialog(b *bytes.Buffer, d *dialog.Dialog) {
	fmt.Fprintln(b, "Address books:")
	for _, desc := range d.AddressBooks() {
		fmt.Fprintf(b, "  %s: %s groups=%v readonly=%v\n",
			desc.ID, desc.Name, desc.Groups, desc.ReadOnly)
	}
	fmt.Fprintln(b, "Rows:")
	for _, r := range d.Rows() {
		fmt.Fprintf(b, "  %s: selected=%v name=%q email=%q first=%q last=%q book=%q group=%q\n",
			r.Key, r.Selected, r.Name, r.Email, r.FirstName, r.Surname, r.AddressBook, r.Group)
		groups := make([]string, 0, len(r.Groups))
		for _, g := range r.Groups {
			if g.Name == "" {
				groups = append(groups, g.ID)
				continue
			}
			groups = append(groups, g.ID+"="+g.Name)
		}
		fmt.Fprintf(b, "     groups: %s\n", strings.Join(groups, ", "))
	}
	fmt.Fprintln(b)
}

func formatOutcome(b *bytes.Buffer, out *dialog.Outcome, d *dialog.Dialog) {
	fmt.Fprintf(b, "Saved: %s\n", strings.Join(out.Saved, ", "))
	fmt.Fprintf(b, "Failed: %d\n", len(out.Failed))
	fmt.Fprintf(b, "Reopened: %v\n", out.Reopened)
	fmt.Fprintf(b, "Open: %v\n", d.IsOpen())
}

func startServer(sqlPath string) (*server.Services, func(), error) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	addressbook.Constructors["sql"] = absql.New
	addressbook.Constructors["memory"] = abmem.New
	session.Constructors["memory"] = sessmem.New

	clearEnv()
	os.Setenv("RCPTCONTACT_ADDRESSBOOK_SQLPATH", sqlPath)
	os.Setenv("RCPTCONTACT_PLUGIN_ENABLEDBYDEFAULT", "true")
	os.Setenv("RCPTCONTACT_PLUGIN_USEGROUPS", "true")
	os.Setenv("RCPTCONTACT_WEB_ADDR", webAddr)
	os.Setenv("RCPTCONTACT_LUA_PATH", filepath.Join("testdata", "rcptcontact.lua"))
	conf, err := config.Process()
	if err != nil {
		return nil, nil, err
	}

	shutdownChan := make(chan bool)
	services, err := server.FullAssembly(conf, shutdownChan)
	if err != nil {
		return nil, nil, err
	}
	svcCtx, svcCancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	services.Start(svcCtx, func() { close(ready) })
	select {
	case <-ready:
	case err := <-services.Notify():
		svcCancel()
		return nil, nil, err
	case <-time.After(5 * time.Second):
		svcCancel()
		return nil, nil, fmt.Errorf("web server not ready")
	}

	return services, func() {
		// Shut everything down.
		close(shutdownChan)
		svcCancel()
		services.Join()
		database.CloseAll()
	}, nil
}

func readTestData(path ...string) []byte {
	// Prefix path with testdata.
	p := append([]string{"testdata"}, path...)
	f, err := os.Open(filepath.Join(p...))
	if err != nil {
		panic(err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		panic(err)
	}
	return data
}

// clearEnv clears environment variables, preserving any that are critical for this OS.
func clearEnv() {
	preserve := make(map[string]string)
	backup := func(k string) {
		preserve[k] = os.Getenv(k)
	}

	// Backup ciritcal env variables.
	if runtime.GOOS == "windows" {
		backup("SYSTEMROOT")
	}

	os.Clearenv()

	for k, v := range preserve {
		os.Setenv(k, v)
	}
}
