package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/ctrlsys/internal/control"
	"github.com/san-kum/ctrlsys/internal/viz"
)

func newLiveCmd() *cobra.Command {
	var flags configFlags
	cmd := &cobra.Command{
		Use:   "live",
		Short: "run the loop live and tune gains interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, name, err := flags.load(cmd)
			if err != nil {
				return err
			}
			p, err := cfg.NewPlant()
			if err != nil {
				return err
			}
			integ, err := cfg.NewIntegrator()
			if err != nil {
				return err
			}

			var gains control.PIDCoefficients
			if a := cfg.Primary(); a != nil {
				gains = control.PIDCoefficients{KP: a.Kp, KI: a.Ki, KD: a.Kd}
			}

			m, err := viz.NewModel(viz.Session{
				Name:       name + " / " + cfg.Plant.Model,
				Plant:      p,
				Integrator: integ,
				Factory: func(g control.PIDCoefficients) (*control.ControlSystem, error) {
					return cfg.WithGains(g).BuildSystem()
				},
				Gains:   gains,
				Initial: cfg.InitialState(p),
				Target:  cfg.SimConfig().Target,
				Dt:      cfg.Run.Dt,
			})
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
	flags.register(cmd)
	return cmd
}
