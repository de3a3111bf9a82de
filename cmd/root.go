package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bellalarm/internal/config"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	return newRootCmdFor(&app{v: config.New()})
}

func newRootCmdFor(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "bellalarm",
		Short: "Control panel and simulator for the bell alarm device",
		Long: `bellalarm talks to a bell alarm device over its WebSocket gateway.

"panel" shows the device in the terminal and lets you switch the motor and
the alarm or set the alarm time. "simulate" runs a stand-in device that
serves the same gateway.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default configs/config.yml)")
	root.PersistentFlags().String("log-level", "", "log level: debug|info|warn|error")
	_ = a.v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newPanelCmd(a))
	root.AddCommand(newSimulateCmd(a))
	return root
}
