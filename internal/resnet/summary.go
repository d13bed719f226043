package resnet

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Summarizer is implemented by Network for every backend.
type Summarizer interface {
	Layers() []LayerInfo
	NumParameters() int
	Depth() int
	fmt.Stringer
}

// WriteSummary prints one row per layer followed by the totals.
//
//	name                 kind         output        params
//	stem.conv            Conv2D       (1, 16, 32, 32)  432
//	...
func WriteSummary(w io.Writer, net Summarizer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n\n", net)
	fmt.Fprintln(tw, "name\tkind\toutput\tparams")
	for _, l := range net.Layers() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", l.Name, l.Kind, l.OutputShape, l.Params)
	}
	fmt.Fprintf(tw, "\nweight layers: %d\n", net.Depth())
	fmt.Fprintf(tw, "parameters: %d\n", net.NumParameters())
	return tw.Flush()
}
