package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/de-tools/report-forge/pkg/services/source"
	"github.com/spf13/cobra"
)

type SourcesCmd struct {
	registry *source.Registry
}

func NewSourcesCmd(registry *source.Registry) *cobra.Command {
	sc := &SourcesCmd{registry: registry}
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List supported record source kinds",
		RunE:  sc.run,
	}

	return cmd
}

func (sc *SourcesCmd) run(cmd *cobra.Command, args []string) error {
	kinds := sc.registry.Kinds()
	if len(kinds) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No record sources registered")
		return nil
	}

	sort.Strings(kinds)
	fmt.Fprintf(cmd.OutOrStdout(), "Supported sources:\n%s\n", strings.Join(kinds, "\n"))
	return nil
}
