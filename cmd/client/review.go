package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/inbucket/rcptcontact/pkg/dialog"
)

type reviewCmd struct {
	save    bool
	output  string
	book    string
	group   string
	exclude regexFlag
}

func (*reviewCmd) Name() string {
	return "review"
}

func (*reviewCmd) Synopsis() string {
	return "review and save pending recipients"
}

func (*reviewCmd) Usage() string {
	return `review [flags]:
	collect the recipients pending for the session and print them, optionally
	saving them as contacts.  Collecting empties the session buffer.
	exit status will be 1 if nothing was pending, otherwise 0
`
}

func (r *reviewCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.save, "save", false, "save the selected recipients")
	f.StringVar(&r.output, "output", "table", "output format: table or json")
	f.StringVar(&r.book, "book", "", "address book to save to, defaults to the first offered")
	f.StringVar(&r.group, "group", "", "group ID to add saved contacts to")
	f.Var(&r.exclude, "exclude", "deselect recipients whose email matches this regexp")
}

func (r *reviewCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if r.output != "table" && r.output != "json" {
		return usage("unknown output type: " + r.output)
	}
	c, err := newClient()
	if err != nil {
		return usage(err.Error())
	}

	d := dialog.New(c, nil, *language)
	open, err := d.Open(ctx)
	if err != nil {
		return fatal("REST call failed", err)
	}
	if !open {
		return subcommands.ExitFailure
	}
	defer d.Close()

	for _, row := range d.Rows() {
		if r.book != "" {
			if err := d.SetAddressBook(ctx, row.Key, r.book); err != nil {
				return fatal("Error", err)
			}
		}
		err := d.Edit(row.Key, func(draft *dialog.Draft) {
			if r.group != "" {
				draft.Group = r.group
			}
			if r.exclude.Defined() && r.exclude.MatchString(draft.Email) {
				draft.Selected = false
			}
		})
		if err != nil {
			return fatal("Error", err)
		}
	}
	if err := r.print(d.Rows()); err != nil {
		return fatal("Error", err)
	}
	if !r.save {
		return subcommands.ExitSuccess
	}

	out, err := d.Save(ctx)
	var verr *dialog.ValidationError
	if errors.As(err, &verr) {
		return usage(verr.Error())
	}
	if err != nil {
		return fatal("Save REST call failed", err)
	}
	fmt.Printf("saved %d contact(s)\n", len(out.Saved))
	for key, msg := range out.Failed {
		fmt.Fprintf(os.Stderr, "row %s: %s\n", key, msg)
	}
	if len(out.Failed) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (r *reviewCmd) print(rows []dialog.Draft) error {
	if r.output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSELECTED\tNAME\tEMAIL\tBOOK\tGROUP")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%v\t%s\t%s\t%s\t%s\n",
			row.Key, row.Selected, row.Name, row.Email, row.AddressBook, row.Group)
	}
	return tw.Flush()
}
