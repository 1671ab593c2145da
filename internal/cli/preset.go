package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pkordes/gigboard/internal/calendar"
	"github.com/pkordes/gigboard/internal/preset"
)

// presetFlags are the date selection flags shared by preset and events.
type presetFlags struct {
	kind string
	date string
	from string
	to   string
}

func (f *presetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "single day for the specific preset (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.from, "from", "", "range start for the range preset (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "range end for the range preset (YYYY-MM-DD)")
}

// preset builds the Preset the flags describe. An empty kind means today.
func (f *presetFlags) preset() (preset.Preset, error) {
	kind, err := preset.ParseKind(f.kind)
	if err != nil {
		return preset.Preset{}, err
	}
	p := preset.Preset{Kind: kind}
	switch kind {
	case preset.Specific:
		d, err := parseFlagDate("date", f.date)
		if err != nil {
			return preset.Preset{}, err
		}
		if d == nil {
			return preset.Preset{}, fmt.Errorf("preset %q requires --date", kind)
		}
		p.Range.From = d
	case preset.Custom:
		if p.Range.From, err = parseFlagDate("from", f.from); err != nil {
			return preset.Preset{}, err
		}
		if p.Range.To, err = parseFlagDate("to", f.to); err != nil {
			return preset.Preset{}, err
		}
	}
	return p, nil
}

func parseFlagDate(name, s string) (*calendar.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, ok := calendar.Parse(s)
	if !ok {
		return nil, fmt.Errorf("--%s %q: %w", name, s, errInvalidDate)
	}
	return &d, nil
}

func newPresetCmd() *cobra.Command {
	var flags presetFlags

	cmd := &cobra.Command{
		Use:       "preset <kind>",
		Short:     "Show the date range a preset resolves to today",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.kind = args[0]
			p, err := flags.preset()
			if err != nil {
				return err
			}
			r := preset.Resolve(p, getApp(cmd).now())
			if err := r.Validate(); err != nil {
				return err
			}
			return printRange(cmd.OutOrStdout(), r)
		},
	}
	flags.register(cmd)
	return cmd
}

func printRange(w io.Writer, r calendar.Range) error {
	_, err := fmt.Fprintf(w, "from: %s\nto:   %s\n", bound(r.From), bound(r.To))
	return err
}

func bound(d *calendar.Date) string {
	if d == nil {
		return "open"
	}
	return d.String()
}

func kindNames() []string {
	names := make([]string, len(preset.Kinds))
	for i, k := range preset.Kinds {
		names[i] = string(k)
	}
	return names
}
