package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vplat/platform"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the address map of a platform.",
	Long: "`dump` builds the platform and prints the targets and the " +
		"mappings of every router.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadPlatformConfig(cmd)
		if err != nil {
			return err
		}

		p, err := platform.Build(cfg, nil)
		if err != nil {
			return err
		}
		defer p.Teardown()

		return dumpPlatform(cmd, p)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func dumpPlatform(cmd *cobra.Command, p *platform.Platform) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "platform %s, quantum %.3gs\n", p.Name(), p.Quantum().Get())

	fmt.Fprintln(w, "targets:")
	for _, t := range p.Targets() {
		fmt.Fprintf(w, "  %s (%d bits, %s)\n", t.Name(), t.BusWidth(), t.Access())
	}

	for _, r := range p.Routers() {
		fmt.Fprintf(w, "router %s:\n", r.Name())

		if err := r.Dump(w); err != nil {
			return fmt.Errorf("dumping %s: %w", r.Name(), err)
		}
	}

	return nil
}
