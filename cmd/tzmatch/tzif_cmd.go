package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ngrash/tzmatch/tzif"
	"github.com/ngrash/tzmatch/zoneinfo"
)

type TZifFlags struct {
	V1      bool `subcmd:"v1,false,always print the version 1 data block"`
	Horizon int  `subcmd:"horizon,2037,last year for which footer rules are expanded"`
}

type TZif struct {
	out io.Writer
}

func readTZif(path string) (tzif.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return tzif.Data{}, err
	}
	defer f.Close()
	d, err := tzif.DecodeData(f)
	if err != nil {
		return tzif.Data{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Inspect prints a TZif file and the problems found by tzif.Validate.
func (t *TZif) Inspect(_ context.Context, flags any, args []string) error {
	fv := flags.(*TZifFlags)
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one file, got %d", len(args))
	}
	d, err := readTZif(args[0])
	if err != nil {
		return err
	}
	if d.Version == tzif.V1 || fv.V1 {
		t.printBlock(tzif.V1, d.V1)
	}
	if d.Version > tzif.V1 {
		t.printBlock(d.Version, d.V2)
		fmt.Fprintf(t.out, "Footer: %q\n\n", d.Footer)
	}
	tl, err := zoneinfo.FromTZif(args[0], d, fv.Horizon)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "Timeline: %d periods\n", tl.Len())
	if err := tzif.Validate(d); err != nil {
		fmt.Fprintf(t.out, "\nInvalid:\n%v\n", err)
	}
	return nil
}

func (t *TZif) printBlock(v tzif.Version, b tzif.Block) {
	h := b.Header(v)
	hw := table.NewWriter()
	hw.SetTitle(fmt.Sprintf("Header %v", v))
	hw.AppendHeader(table.Row{"isutcnt", "isstdcnt", "leapcnt", "timecnt", "typecnt", "charcnt"})
	hw.AppendRow(table.Row{h.Isutcnt, h.Isstdcnt, h.Leapcnt, h.Timecnt, h.Typecnt, h.Charcnt})
	fmt.Fprintln(t.out, hw.Render())

	tw := table.NewWriter()
	tw.SetTitle("Local time types")
	tw.AppendHeader(table.Row{"#", "utoff", "isdst", "designation", "std/wall", "ut/local"})
	for i, ltt := range b.LocalTimeTypes {
		tw.AppendRow(table.Row{i, ltt.Utoff, ltt.IsDST, b.Designation(ltt.Idx), indicator(b.StandardWall, i, "std", "wall"), indicator(b.UTLocal, i, "ut", "local")})
	}
	fmt.Fprintln(t.out, tw.Render())

	fmt.Fprintf(t.out, "Transitions (%d) = %v\n", len(b.TransitionTimes), b.TransitionTimes)
	fmt.Fprintf(t.out, "Types (%d) = %v\n", len(b.TransitionTypes), b.TransitionTypes)
	fmt.Fprintf(t.out, "Leap seconds (%d) = %+v\n", len(b.LeapSeconds), b.LeapSeconds)
	fmt.Fprintf(t.out, "Designations = %q\n\n", strings.Split(strings.TrimSuffix(string(b.Designations), "\x00"), "\x00"))
}

func indicator(flags []bool, i int, set, unset string) string {
	if i >= len(flags) {
		return ""
	}
	if flags[i] {
		return set
	}
	return unset
}

// Diff compares two decoded TZif files.
func (t *TZif) Diff(_ context.Context, _ any, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected two files, got %d", len(args))
	}
	a, err := readTZif(args[0])
	if err != nil {
		return err
	}
	b, err := readTZif(args[1])
	if err != nil {
		return err
	}
	if diff := cmp.Diff(a, b); diff != "" {
		_, err = fmt.Fprintf(t.out, "files are different: -A +B\n%s\n", diff)
		return err
	}
	_, err = fmt.Fprintln(t.out, "files are identical")
	return err
}
