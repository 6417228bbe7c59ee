package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type pendingCmd struct{}

func (*pendingCmd) Name() string {
	return "pending"
}

func (*pendingCmd) Synopsis() string {
	return "check for recipients awaiting review"
}

func (*pendingCmd) Usage() string {
	return `pending:
	print the client scripts the mailbox list would include
	exit status will be 1 if nothing is pending, otherwise 0
`
}

func (p *pendingCmd) SetFlags(f *flag.FlagSet) {}

func (p *pendingCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c, err := newClient()
	if err != nil {
		return usage(err.Error())
	}

	scripts, err := c.Scripts(ctx)
	if err != nil {
		return fatal("REST call failed", err)
	}
	if len(scripts) == 0 {
		return subcommands.ExitFailure
	}
	for _, s := range scripts {
		fmt.Println(s)
	}
	return subcommands.ExitSuccess
}
