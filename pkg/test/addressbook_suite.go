package test

import (
	"context"
	"errors"
	"testing"

	"github.com/inbucket/rcptcontact/pkg/addressbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// BookFactory returns a new, empty book for the test suite.
type BookFactory func() (book addressbook.Book, destroy func(), err error)

// BookSuite runs a set of general tests on the provided Book.
func BookSuite(t *testing.T, factory BookFactory) {
	testCases := []struct {
		name string
		test func(*testing.T, addressbook.Book)
	}{
		{"search empty", testSearchEmpty},
		{"insert then search", testInsertSearch},
		{"search ignores case", testSearchCase},
		{"search unknown field", testSearchUnknownField},
		{"groups", testGroups},
		{"add to missing group", testAddToMissingGroup},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			book, destroy, err := factory()
			require.NoError(t, err)
			defer destroy()
			tc.test(t, book)
		})
	}
}

func testSearchEmpty(t *testing.T, book addressbook.Book) {
	n, err := book.Search(context.Background(), addressbook.FieldEmail, "nobody@example.com")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testInsertSearch(t *testing.T, book addressbook.Book) {
	ctx := context.Background()
	id, err := book.Insert(ctx, addressbook.Record{
		Name: "Jane Doe", Email: "jane@example.com", FirstName: "Jane", Surname: "Doe"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	second, err := book.Insert(ctx, addressbook.Record{Name: "Jane Two", Email: "jane@example.com"})
	require.NoError(t, err)
	assert.NotEqual(t, id, second, "IDs must be unique")

	n, err := book.Search(ctx, addressbook.FieldEmail, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = book.Search(ctx, addressbook.FieldName, "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = book.Search(ctx, addressbook.FieldEmail, "john@example.com")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testSearchCase(t *testing.T, book addressbook.Book) {
	ctx := context.Background()
	_, err := book.Insert(ctx, addressbook.Record{Name: "Mixed", Email: "Mixed.Case@Example.com"})
	require.NoError(t, err)

	n, err := book.Search(ctx, addressbook.FieldEmail, "mixed.case@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func testSearchUnknownField(t *testing.T, book addressbook.Book) {
	_, err := book.Search(context.Background(), "shoe_size", "42")
	assert.True(t, errors.Is(err, addressbook.ErrUnsupportedField), "got %v", err)
}

func testGroups(t *testing.T, book addressbook.Book) {
	ctx := context.Background()
	creator, ok := book.(addressbook.GroupCreator)
	if !ok {
		t.Skip("book does not create groups")
	}

	groups, err := book.ListGroups(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)

	friends, err := creator.CreateGroup(ctx, "Friends")
	require.NoError(t, err)
	_, err = creator.CreateGroup(ctx, "Colleagues")
	require.NoError(t, err)

	groups, err = book.ListGroups(ctx)
	require.NoError(t, err)
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	assert.ElementsMatch(t, []string{"Friends", "Colleagues"}, names)

	id, err := book.Insert(ctx, addressbook.Record{Name: "Pal", Email: "pal@example.com"})
	require.NoError(t, err)
	require.NoError(t, book.AddToGroup(ctx, friends.ID, id))

	// Adding twice is harmless.
	assert.NoError(t, book.AddToGroup(ctx, friends.ID, id))

	// Unknown contacts are rejected.
	assert.Error(t, book.AddToGroup(ctx, friends.ID, "999999"))
}

func testAddToMissingGroup(t *testing.T, book addressbook.Book) {
	ctx := context.Background()
	id, err := book.Insert(ctx, addressbook.Record{Name: "Lonely", Email: "lonely@example.com"})
	require.NoError(t, err)

	err = book.AddToGroup(ctx, "12345", id)
	assert.True(t, errors.Is(err, addressbook.ErrNotExist), "got %v", err)
}
