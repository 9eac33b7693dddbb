package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var errPreviewTracker = errors.New("preview needs --tracker")

func (c *cli) previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview TEXT...",
		Short: "Classify text against a tracker and print the report",
		Long: `Preview classifies TEXT as if it had just been sent to the tracker's chat.
Nothing is written and no reply is sent.`,
		Example: `  chatledger preview --tracker calories "Apple - 200g"`,
		Args: func(cmd *cobra.Command, args []string) error {
			if c.tracker == "" {
				return errPreviewTracker
			}

			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, trackers, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Service.Preview(cmd.Context(), trackers[0], strings.Join(args, " "))
			if err != nil {
				return err
			}

			fmt.Fprintln(c.out, res.Report)

			if res.Help != "" {
				fmt.Fprintln(c.out, res.Help)
			}

			return nil
		},
	}
}
