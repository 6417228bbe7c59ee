package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type groupsCmd struct{}

func (*groupsCmd) Name() string {
	return "groups"
}

func (*groupsCmd) Synopsis() string {
	return "list the groups of an address book"
}

func (*groupsCmd) Usage() string {
	return `groups <address book id>:
	list group IDs and names
`
}

func (g *groupsCmd) SetFlags(f *flag.FlagSet) {}

func (g *groupsCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book := f.Arg(0)
	if book == "" {
		return usage("address book id required")
	}
	c, err := newClient()
	if err != nil {
		return usage(err.Error())
	}

	list, err := c.GetGroups(ctx, book, "cli")
	if err != nil {
		return fatal("REST call failed", err)
	}
	for _, grp := range list.Groups {
		fmt.Printf("%s\t%s\n", grp.ID, grp.Name)
	}
	return subcommands.ExitSuccess
}
