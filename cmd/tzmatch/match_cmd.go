package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ngrash/tzmatch/ctz"
	"github.com/ngrash/tzmatch/match"
)

type MatchFlags struct {
	ConfigFlags
	All bool `subcmd:"all,false,print every compatible zone instead of the first one"`
}

type Match struct {
	out io.Writer
}

func (m *Match) Run(ctx context.Context, flags any, args []string) error {
	fv := flags.(*MatchFlags)
	ctx, cfg, err := setup(ctx, &fv.ConfigFlags)
	if err != nil {
		return err
	}
	ref, err := parseRef(fv.Ref)
	if err != nil {
		return err
	}
	rules := make([]ctz.CustomTimeZone, len(args))
	for i, arg := range args {
		if rules[i], err = ctz.ReadFile(arg); err != nil {
			return err
		}
	}
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"File", "Rule", "Match"})
	for i, z := range rules {
		var names []string
		if fv.All {
			names, err = match.FindAll(ctx, db, z, match.WithReference(ref))
		} else {
			var name string
			name, err = match.Find(ctx, db, z, match.WithReference(ref))
			if name != "" {
				names = []string{name}
			}
		}
		if err != nil {
			return err
		}
		tw.AppendRow(table.Row{args[i], z.Name, matchColumn(names)})
	}
	_, err = io.WriteString(m.out, tw.Render()+"\n")
	return err
}

func matchColumn(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, "\n")
}

type ZoneFlags struct {
	ConfigFlags
	Periods int `subcmd:"periods,3,number of periods to print on either side of the reference time"`
}

type Zone struct {
	out io.Writer
}

func (z *Zone) Run(ctx context.Context, flags any, args []string) error {
	fv := flags.(*ZoneFlags)
	ctx, cfg, err := setup(ctx, &fv.ConfigFlags)
	if err != nil {
		return err
	}
	ref, err := parseRef(fv.Ref)
	if err != nil {
		return err
	}
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	for _, name := range args {
		tl, err := db.Lookup(name)
		if err != nil {
			return err
		}
		tw := periodsTable(tl, ref, fv.Periods)
		tw.SetTitle(name)
		if _, err := io.WriteString(z.out, tw.Render()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

type RuleFlags struct {
	Year int `subcmd:"year,0,year to print the transitions for, defaults to the current year"`
}

type Rule struct {
	out io.Writer
}

func (r *Rule) Run(ctx context.Context, flags any, args []string) error {
	fv := flags.(*RuleFlags)
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one rule file, got %d", len(args))
	}
	z, err := ctz.ReadFile(args[0])
	if err != nil {
		return err
	}
	year := fv.Year
	if year == 0 {
		year = time.Now().Year()
	}
	tw, err := transitionsTable(z, year)
	if err != nil {
		return err
	}
	_, err = io.WriteString(r.out, tw.Render()+"\n")
	return err
}
