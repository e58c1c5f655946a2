package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/admrender/adm"
	"github.com/cwbudde/admrender/ear"
)

func newLayoutsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "layouts",
		Short:       "List the supported loudspeaker layouts",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			names := ear.LayoutNames()
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				layout, err := ear.GetLayout(name)
				if err != nil {
					return err
				}
				packID, _ := adm.PackFormatIDForLayout(name)
				rows = append(rows, []string{
					name,
					packID.String(),
					strconv.Itoa(layout.NumChannels()),
					strings.Join(layout.ChannelNames(), " "),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(layoutColumns, rows))
			return nil
		},
	}
}
