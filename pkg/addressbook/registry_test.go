package addressbook_test

import (
	"errors"
	"testing"

	"github.com/inbucket/rcptcontact/pkg/addressbook"
	"github.com/inbucket/rcptcontact/pkg/config"
	"github.com/inbucket/rcptcontact/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(descs []addressbook.Descriptor) []string {
	result := make([]string, len(descs))
	for i, d := range descs {
		result[i] = d.ID
	}
	return result
}

func newRegistry() *addressbook.Registry {
	r := addressbook.NewRegistry()
	r.Add("sql", "Personal Addresses", test.NewBook())
	r.Add("ldap", "Company", test.NewBook())
	r.Add("collected", "Collected", test.NewBook())
	return r
}

func TestSQLResolvesToZero(t *testing.T) {
	r := newRegistry()
	got := r.Resolve([]string{"sql"})
	require.Len(t, got, 1)
	assert.Equal(t, "0", got[0].ID)
	assert.Equal(t, "Personal Addresses", got[0].Name)

	book, err := r.Get("sql")
	require.NoError(t, err)
	zero, err := r.Get("0")
	require.NoError(t, err)
	assert.Same(t, book, zero)
}

func TestResolveKeepsRegistryOrder(t *testing.T) {
	r := newRegistry()
	got := r.Resolve([]string{"collected", "missing", "sql"})
	assert.Equal(t, []string{"0", "collected"}, ids(got))
}

func TestEnabledFallsBackToAutocomplete(t *testing.T) {
	r := newRegistry()
	assert.Equal(t, []string{"ldap"}, ids(r.Enabled(nil, []string{"ldap"})))
	assert.Equal(t, []string{"0", "collected"},
		ids(r.Enabled([]string{"collected", "sql"}, []string{"ldap"})))
}

func TestSourcesAndDescriptors(t *testing.T) {
	r := addressbook.NewRegistry()
	plain := test.NewBook()
	plain.NoGroups = true
	r.Add("a", "A", plain)
	r.Add("b", "B", test.NewBook())
	r.Add("a", "A2", test.NewBook())

	got := r.Sources()
	require.Len(t, got, 2)
	assert.Equal(t, addressbook.Descriptor{ID: "a", Name: "A2", Groups: true}, got[0])
	assert.Equal(t, "b", got[1].ID)
}

func TestGetMissing(t *testing.T) {
	_, err := newRegistry().Get("nope")
	assert.True(t, errors.Is(err, addressbook.ErrNotExist))
}

func TestFromConfigSkipsBadSources(t *testing.T) {
	addressbook.Constructors["stub"] = func(id string, cfg config.AddressBook) (addressbook.Book, error) {
		return test.NewBook(), nil
	}
	addressbook.Constructors["broken"] = func(id string, cfg config.AddressBook) (addressbook.Book, error) {
		return nil, errors.New("cannot open")
	}
	defer delete(addressbook.Constructors, "stub")
	defer delete(addressbook.Constructors, "broken")

	r := addressbook.FromConfig(config.AddressBook{
		Sources: []string{"sql:stub", "bad", "x:unknown", "y:broken", "other:stub"},
		Names:   map[string]string{"sql": "Personal"},
	})
	got := r.Sources()
	assert.Equal(t, []string{"0", "other"}, ids(got))
	assert.Equal(t, "Personal", got[0].Name)
	assert.Equal(t, "other", got[1].Name)
}
