package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
)

type sendCmd struct {
	to, cc, bcc string
	raw         bool
}

func (*sendCmd) Name() string {
	return "send"
}

func (*sendCmd) Synopsis() string {
	return "report a sent message"
}

func (*sendCmd) Usage() string {
	return `send [flags] [file]:
	report the recipients of a sent message, from header flags or from the
	raw message in file (stdin when file is "-")
`
}

func (s *sendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.to, "to", "", "To header")
	f.StringVar(&s.cc, "cc", "", "Cc header")
	f.StringVar(&s.bcc, "bcc", "", "Bcc header")
	f.BoolVar(&s.raw, "raw", false, "read an RFC 5322 message instead of header flags")
}

func (s *sendCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c, err := newClient()
	if err != nil {
		return usage(err.Error())
	}

	if s.raw {
		source, err := readSource(f.Arg(0))
		if err != nil {
			return fatal("Couldn't read message", err)
		}
		if err := c.SendRaw(ctx, source); err != nil {
			return fatal("REST call failed", err)
		}
		return subcommands.ExitSuccess
	}

	header := make(map[string][]string)
	for name, value := range map[string]string{"To": s.to, "Cc": s.cc, "Bcc": s.bcc} {
		if value != "" {
			header[name] = []string{value}
		}
	}
	if len(header) == 0 {
		return usage("at least one of -to, -cc or -bcc is required")
	}
	if err := c.SendMessage(ctx, header); err != nil {
		return fatal("REST call failed", err)
	}
	return subcommands.ExitSuccess
}

func readSource(name string) ([]byte, error) {
	switch name {
	case "":
		return nil, fmt.Errorf("file required with -raw")
	case "-":
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}
