package session_test

import (
	"testing"

	"github.com/inbucket/rcptcontact/pkg/config"
	"github.com/inbucket/rcptcontact/pkg/session"
	"github.com/inbucket/rcptcontact/pkg/session/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfig(t *testing.T) {
	session.Constructors["memory"] = mem.New
	defer delete(session.Constructors, "memory")

	store, err := session.FromConfig(config.Session{Type: "memory"})
	require.NoError(t, err)
	assert.NotNil(t, store)

	_, err = session.FromConfig(config.Session{Type: "floppy"})
	assert.Error(t, err)
}
