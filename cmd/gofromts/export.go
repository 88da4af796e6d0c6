package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	exportCmd.Flags().StringP("out", "o", "dist", "output directory")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the site as static files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
		app, err := newApp()
		if err != nil {
			return err
		}
		n, err := app.Export(cmd.Context(), out)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d pages to %s\n", n, out)
		return nil
	},
}
