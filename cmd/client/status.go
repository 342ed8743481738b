package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jobfit/analyzer/internal/client"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the analyzer server is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		server := viper.GetString("server")
		if err := client.New(server).Health(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("%s is up\n", server)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
