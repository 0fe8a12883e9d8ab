package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGraphCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "graph [name...]",
		Short: "Print construction order for registrations",
		Long: `Print the dependency-first construction order for each named
registration, or for every registration when no name is given.

Examples:
  wirekit graph -m wiring.yml
  wirekit graph -m wiring.yml Service`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.applyManifest()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			problems := printProblems(out, w.applyErr)

			names := args
			if len(names) == 0 {
				for _, info := range w.reg.Registrations() {
					names = append(names, info.Name)
				}
			}

			for _, name := range names {
				order, err := w.reg.Order(name)
				if err != nil {
					problems += printProblems(out, err)
					continue
				}
				fmt.Fprintf(out, "%s: %s\n", name, strings.Join(order, " -> "))
			}

			if problems > 0 {
				return errProblems
			}
			return nil
		},
	}
}
