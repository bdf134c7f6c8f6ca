package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func (a *app) rulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the registered rules",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			reg, err := a.buildRegistry()
			if err != nil {
				return err
			}

			t := table.New().
				Border(lipgloss.HiddenBorder()).
				Headers("RULE", "PRIORITY", "SHELLS", "ENABLED", "DESCRIPTION")

			for _, id := range reg.IDs() {
				r, _ := reg.Get(id)
				shells := "all"
				if r.Shells != nil {
					names := make([]string, len(r.Shells))
					for i, s := range r.Shells {
						names[i] = s.String()
					}
					shells = strings.Join(names, ",")
				}
				enabled := "yes"
				if !reg.IsEnabled(id) {
					enabled = "no"
				}
				t.Row(id, strconv.Itoa(r.Priority), shells, enabled, r.Description)
			}

			fmt.Fprintln(a.streams.Out, t.String())
			return nil
		},
	}
}
