package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
)

// stats prints one line per recorded session. The input path is unused.
func (c *cli) stats(_, out string) error {
	if c.traces == nil {
		return errors.New("stats needs a trace database (-trace-db)")
	}
	if err := c.traces.Flush(); err != nil {
		return err
	}
	sessions, err := c.traces.Sessions()
	if err != nil {
		return err
	}

	w, err := c.openOutput(out)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tLABEL\tDIR\tCONFIG\tCH\tBYTES\tFRAMES\tATTACKS\tCONCEALED\tERRORS\tGAIN\tBITS\tBANDWIDTH")
	for _, s := range sessions {
		sum, err := c.traces.Summary(s.ID)
		if err != nil {
			w.Close()
			return err
		}
		bws, err := c.traces.Bandwidths(s.ID)
		if err != nil {
			w.Close()
			return err
		}
		var bw []string
		for _, b := range bws {
			bw = append(bw, fmt.Sprintf("%dk:%d", b.BandwidthHz/1000, b.Frames))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%gms/%dHz\t%d\t%d\t%d\t%d\t%d\t%d\t%.1f\t%.0f\t%s\n",
			s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"), s.Label, s.Direction,
			float64(s.DurationUS)/1000, s.SampleRateHz, s.Channels, s.FrameBytes,
			sum.Frames, sum.Attacks, sum.Concealed, sum.Errors, sum.MeanGain, sum.MeanBits,
			strings.Join(bw, " "))
	}
	return errors.Join(tw.Flush(), w.Close())
}
