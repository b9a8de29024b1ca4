// Command tzmatch finds IANA time zones that behave like Microsoft Graph
// custom time zones.
package main

import (
	"context"
	"errors"
	"os"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
)

const cmdSpec = `name: tzmatch
summary: tzmatch finds IANA time zones compatible with custom time zone rules
commands:
  - name: match
    summary: print the first, or with --all every, zone compatible with each rule file
    arguments:
      - <rule-file>... - YAML or JSON customTimeZone, - for stdin
  - name: zone
    summary: print the periods of zones around the reference time
    arguments:
      - <zone>...
  - name: rule
    summary: print the transitions of a rule in a year
    arguments:
      - <rule-file>
  - name: fetch
    summary: download the latest tzdata release into the cache directory
  - name: tzif
    summary: inspect TZif files
    commands:
      - name: inspect
        summary: print the header, data blocks and footer of a TZif file and validate it
        arguments:
          - <file>
      - name: diff
        summary: compare the decoded contents of two TZif files
        arguments:
          - <file-a>
          - <file-b>
`

func cli() *subcmd.CommandSetYAML {
	cmd := subcmd.MustFromYAML(cmdSpec)

	m := &Match{out: os.Stdout}
	cmd.Set("match").MustRunner(m.Run, &MatchFlags{})

	z := &Zone{out: os.Stdout}
	cmd.Set("zone").MustRunner(z.Run, &ZoneFlags{})

	r := &Rule{out: os.Stdout}
	cmd.Set("rule").MustRunner(r.Run, &RuleFlags{})

	f := &Fetch{out: os.Stdout}
	cmd.Set("fetch").MustRunner(f.Run, &FetchFlags{})

	t := &TZif{out: os.Stdout}
	cmd.Set("tzif", "inspect").MustRunner(t.Inspect, &TZifFlags{})
	cmd.Set("tzif", "diff").MustRunner(t.Diff, &TZifFlags{})
	return cmd
}

var errInterrupt = errors.New("interrupt")

func main() {
	ctx := context.Background()
	ctx, cancel := context.WithCancelCause(ctx)
	cmdutil.HandleSignals(func() { cancel(errInterrupt) }, os.Interrupt)
	err := cli().Dispatch(ctx)
	if context.Cause(ctx) == errInterrupt {
		cmdutil.Exit("%v", errInterrupt)
	}
	if err != nil {
		cmdutil.Exit("%v", err)
	}
}
