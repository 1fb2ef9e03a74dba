package core

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"telnetd/config"
	"telnetd/internal/server"
	"telnetd/util"
)

// DryRunMode prints the effective configuration and the command table
// without binding a port.
type DryRunMode struct {
	Config *config.Config
	Server *server.Server
	Out    io.Writer
}

// Run writes the report to Out.
func (m *DryRunMode) Run(_ context.Context) error {
	cfg := m.Config
	sc := m.Server.Config()

	tw := tabwriter.NewWriter(m.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "listen\t%s\n", util.FormatAddr(cfg.Host, cfg.Port))
	fmt.Fprintf(tw, "max sessions\t%d\n", sc.MaxSessions)
	fmt.Fprintf(tw, "timeout\t%s\n", sc.Timeout)
	fmt.Fprintf(tw, "poll interval\t%s\n", cfg.PollInterval)
	if sc.AcceptRate > 0 {
		fmt.Fprintf(tw, "accept rate\t%g/s\n", sc.AcceptRate)
	} else {
		fmt.Fprintf(tw, "accept rate\tunlimited\n")
	}
	fmt.Fprintf(tw, "banner\t%q\n", sc.Banner)
	fmt.Fprintf(tw, "prompt\t%q\n", sc.Prompt+" ")
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(m.Out, "\ncommands:")
	for _, e := range m.Server.Commands() {
		fmt.Fprintf(m.Out, "  %s - %s\n", e.Name, e.Help)
	}

	aliases := m.Server.Aliases()
	if names := aliases.Names(); len(names) > 0 {
		fmt.Fprintln(m.Out, "\naliases:")
		for _, a := range names {
			target, _ := aliases.Target(a)
			note := ""
			if _, ok := m.Server.Lookup(target); !ok {
				note = " (unknown command)"
			}
			fmt.Fprintf(m.Out, "  %s -> %s%s\n", a, target, note)
		}
	}
	return nil
}
