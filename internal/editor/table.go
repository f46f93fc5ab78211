package editor

import (
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// WriteTable prints the editor table for a platform
func WriteTable(w io.Writer, goos string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Editor", "Binary", "Arguments", "Detected From"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, r := range Editors(goos) {
		detected := strings.Join(r.ProcessNames, ", ")
		if detected == "" {
			detected = "(configure via " + EnvVar + ")"
		}
		table.Append([]string{r.ID, r.Binary, strings.Join(r.Args, " "), detected})
	}
	table.Render()
}
