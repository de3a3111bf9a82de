package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"bellalarm/internal/config"
	"bellalarm/internal/controller"
	"bellalarm/internal/gateway"
	"bellalarm/internal/logger"
	"bellalarm/internal/models"
	"bellalarm/internal/panel"
	"bellalarm/internal/tui"
)

func newPanelCmd(a *app) *cobra.Command {
	var headless bool

	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Open the control panel for a bell device",
		Long: `Connects to ws://<host>/ws, shows the motor, alarm and countdown, and
sends the full control state whenever a control changes. The connection is
retried every panel.reconnect_delay for as long as the panel runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if headless {
				return runHeadless(ctx, a.cfg, cmd.OutOrStdout())
			}
			return runTUI(ctx, a.cfg)
		},
	}

	cmd.Flags().String("host", "", "device host[:port] (default from panel.host)")
	cmd.Flags().BoolVar(&headless, "headless", false, "print panel updates as lines instead of the terminal UI")
	_ = a.v.BindPFlag("panel.host", cmd.Flags().Lookup("host"))
	return cmd
}

func newGateway(cfg *config.Config, log *logger.Logger) *gateway.Manager {
	return gateway.New(gateway.URL(cfg.Panel.Host),
		gateway.WithReconnectDelay(cfg.Panel.ReconnectDelay),
		gateway.WithHandshakeTimeout(cfg.Panel.HandshakeTimeout),
		gateway.WithLogger(log.Named("gateway")),
	)
}

// runTUI drives the Bubble Tea panel. Logs go to log.file so they do not
// tear the screen.
func runTUI(ctx context.Context, cfg *config.Config) error {
	f, err := logger.OpenFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	log := logger.Init(cfg.Log.Level, f)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gw := newGateway(cfg, log)
	ctrl := controller.New(panel.New(), gw, log.Named("panel"))
	prog := tea.NewProgram(
		tui.New(ctrl, cfg.Panel.Host, cfg.Panel.RefreshInterval),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	gw.OnStatus(func(st models.DeviceStatus) { prog.Send(tui.StatusMsg(st)) })
	gw.OnStateChange(func(s gateway.State) { prog.Send(tui.ConnStateMsg(s)) })
	go func() { _ = gw.Connect(ctx) }()

	_, err = prog.Run()
	cancel()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// runHeadless serializes statuses and refresh ticks through the controller
// and prints one line per change.
func runHeadless(ctx context.Context, cfg *config.Config, out io.Writer) error {
	log := logger.Init(cfg.Log.Level, os.Stderr)

	gw := newGateway(cfg, log)
	ctrl := controller.New(panel.New(), gw, log.Named("panel"))

	statuses := make(chan models.DeviceStatus, 16)
	gw.OnStatus(func(st models.DeviceStatus) {
		select {
		case statuses <- st:
		case <-ctx.Done():
		}
	})
	gw.OnStateChange(func(s gateway.State) {
		log.Infow("gateway_state", "state", s.String())
	})
	go func() { _ = gw.Connect(ctx) }()

	err := ctrl.Run(ctx, statuses, cfg.Panel.RefreshInterval, func(p *panel.Panel) {
		_, _ = fmt.Fprintln(out, renderLine(p))
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// renderLine flattens the panel elements into one log-friendly line.
func renderLine(p *panel.Panel) string {
	el := func(id string) string {
		v, _ := p.Element(id)
		if v == "" {
			return panel.Placeholder
		}
		return v
	}
	return fmt.Sprintf("motor=%s alarm=%s alarm_time=%s remaining=%s now=%q bell=%s",
		el(panel.IDMotor), el(panel.IDAlarm), el(panel.IDAlarmTime),
		el(panel.IDRemainingTime), el(panel.IDCurrentTime), el(panel.IDBell))
}
