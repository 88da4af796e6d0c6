package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tmkn/gofromts/scaffold"
)

func init() {
	rootCmd.AddCommand(newCmd)
}

var newCmd = &cobra.Command{
	Use:     "new <name>",
	Short:   "Create a new documentation site",
	Example: "  gofromts new mydocs\n  gofromts new github.com/user/mydocs",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data := scaffold.NewData(args[0])
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Creating new site: %s\n\n", data.ProjectName)

		files, err := scaffold.Generate(afero.NewOsFs(), data.ProjectName, data)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintf(out, "  created %s\n", f)
		}
		fmt.Fprintf(out, "\nNext steps:\n  cd %s\n  gofromts serve\n", data.ProjectName)
		return nil
	},
}
