package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/wirekit/errors"
	"github.com/kbukum/wirekit/logger"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate a wiring manifest",
		Long: `Validate a wiring manifest.

Every entry is registered with a placeholder factory, then the whole graph
is checked. All problems are listed, one per line, and the command exits
non-zero if there are any.

Examples:
  wirekit check -m wiring.yml
  WIREKIT_MANIFEST=deploy/wiring.yml wirekit check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := a.applyManifest()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			problems := printProblems(out, errors.Join(w.applyErr, w.reg.Validate()))
			if problems == 0 {
				// Construct everything once so factory-level failures and
				// resolution-time cycles surface too.
				for _, info := range w.reg.Registrations() {
					if _, err := w.reg.GetContext(cmd.Context(), info.Name); err != nil {
						problems += printProblems(out, err)
					}
				}
			}

			a.log.Info("Manifest checked", logger.Fields(
				"manifest", a.cfg.Manifest,
				"problems", problems,
			))
			if problems > 0 {
				fmt.Fprintf(out, "%d problem(s) in %s\n", problems, a.cfg.Manifest)
				return errProblems
			}
			fmt.Fprintf(out, "ok: %d registrations in %s\n", len(w.reg.Registrations()), a.cfg.Manifest)
			return nil
		},
	}
}
