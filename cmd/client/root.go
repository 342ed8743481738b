package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"jobfit/analyzer/internal/client"
	"jobfit/analyzer/internal/logger"
	"jobfit/analyzer/internal/session"
)

const app = "jobfit"

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobfit is a cli for running job-description match analyses against a portfolio server",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobfit.yaml in current directory)")
	rootCmd.PersistentFlags().String("server", "http://localhost:3000", "base URL of the analyzer server")
	rootCmd.PersistentFlags().String("session-dir", defaultSessionDir(), "directory holding the persisted session")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("session-dir", rootCmd.PersistentFlags().Lookup("session-dir"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// The cli works fine without a config file.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			cobra.CheckErr(err)
		}
	}
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + app
	}
	return filepath.Join(home, "."+app)
}

// newManager wires the session manager from the resolved configuration.
func newManager() (*session.Manager, *zap.Logger, error) {
	zapLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}

	kv, err := session.NewFileKV(viper.GetString("session-dir"))
	if err != nil {
		return nil, nil, err
	}

	store := session.NewStore(kv, zapLogger)
	api := client.New(viper.GetString("server"))

	return session.NewManager(store, api, zapLogger), zapLogger, nil
}
