package main

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/BTreeMap/DialogCore/internal/regex"
	"github.com/BTreeMap/DialogCore/internal/rg"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check regex templates and response generator content",
	Long: `Runs every regex template against its positive and negative examples,
times each template on long non-matching input and loads every response
generator, including the supernode graphs of the topic RGs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout())
	},
}

// runValidate reports template, RG and supernode graph problems to out.
// Slow templates are reported but do not fail the run.
func runValidate(out io.Writer) error {
	var failures int
	templates := regex.Library()
	for _, t := range templates {
		for _, err := range t.SelfTest() {
			failures++
			fmt.Fprintf(out, "FAIL %s: %v\n", t.Name, err)
		}
		for _, slow := range t.SpeedTest() {
			fmt.Fprintf(out, "SLOW %s: %d words took %s\n", t.Name, slow.Words, slow.Duration)
		}
	}
	fmt.Fprintf(out, "checked %d regex templates\n", len(templates))

	reg, err := rg.NewRegistry()
	if err != nil {
		failures++
		fmt.Fprintf(out, "FAIL response generators: %v\n", err)
	} else {
		fmt.Fprintf(out, "loaded %d response generators: %v\n", len(reg.Names()), reg.Names())
	}

	reports, err := rg.TopicReports()
	if err != nil {
		failures++
		fmt.Fprintf(out, "FAIL topic definitions: %v\n", err)
	}
	for _, name := range slices.Sorted(maps.Keys(reports)) {
		r := reports[name]
		fmt.Fprintf(out, "graph %s: %d entries, %d exits, %d paths, %d cycles\n",
			name, len(r.Entries), len(r.Exits), r.Paths, len(r.Cycles))
		for _, p := range r.Problems {
			failures++
			fmt.Fprintf(out, "FAIL %s: %s\n", name, p)
		}
	}

	if failures > 0 {
		return fmt.Errorf("validation failed: %d problem(s)", failures)
	}
	fmt.Fprintln(out, "ok")
	return nil
}
