package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/gigboard/internal/calendar"
)

func newDateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "date",
		Short: "Parse and format calendar dates",
	}
	cmd.AddCommand(newDateParseCmd(), newDateLongCmd(), newDateEventCmd())
	return cmd
}

func newDateParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <YYYY-MM-DD>",
		Short: "Validate a date and print it with its weekday",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ok := calendar.Parse(args[0])
			if !ok {
				return fmt.Errorf("%q: %w", args[0], errInvalidDate)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", d, d.Weekday())
			return err
		},
	}
}

func newDateLongCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "long <YYYY-MM-DD>",
		Short: `Print a date as "Monday, June 15th 2026"`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), calendar.FormatLongDate(args[0]))
			return err
		},
	}
}

func newDateEventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "event <start> [end]",
		Short: "Print an event's compact display date",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			end := ""
			if len(args) == 2 {
				end = args[1]
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), calendar.FormatEventDate(args[0], end))
			return err
		},
	}
}

var errInvalidDate = errors.New("invalid date: want YYYY-MM-DD")
