package core

import (
	"context"
	"fmt"
	"text/tabwriter"

	"chanio/channels"
)

// ListModesMode prints every MapMode with the protection and mapping
// flags it translates to on this platform.
type ListModesMode struct {
	stdio
}

func (m *ListModesMode) Run(ctx context.Context) error {
	tw := tabwriter.NewWriter(m.stdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODE\tWRITABLE\tSHARED\tPROT\tFLAGS")
	for _, mode := range channels.MapModes() {
		fmt.Fprintf(tw, "%s\t%t\t%t\t%#x\t%#x\n",
			mode, mode.Writable(), mode.Shared(), mode.Prot(), mode.Flags())
	}
	return tw.Flush()
}
