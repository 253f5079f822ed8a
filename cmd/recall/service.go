package main

import (
	"fmt"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

// program satisfies service.Interface. The actual work happens in the
// serve command; Start/Stop here only manage the wrapper process.
type program struct{}

func (p *program) Start(service.Service) error { return nil }
func (p *program) Stop(service.Service) error  { return nil }

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Install or remove recall as a system service",
	}

	newService := func() (service.Service, error) {
		return service.New(&program{}, &service.Config{
			Name:        "recall",
			DisplayName: "recall assistant",
			Description: "Conversational assistant with bounded memory",
			Arguments:   []string{"serve"},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Register recall serve with the system service manager",
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			if err := svc.Install(); err != nil {
				return fmt.Errorf("installing service: %w", err)
			}
			fmt.Println("Service installed. Start it with your service manager or 'recall service start'.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "uninstall",
		Short: "Remove the system service registration",
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			if err := svc.Uninstall(); err != nil {
				return fmt.Errorf("uninstalling service: %w", err)
			}
			fmt.Println("Service removed.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start the installed service",
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			return svc.Start()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the installed service",
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			return svc.Stop()
		},
	})

	return cmd
}
