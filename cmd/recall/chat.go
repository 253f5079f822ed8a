package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := buildApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.stop(context.Background())

			if err := a.startPeripherals(ctx); err != nil {
				return err
			}

			noResume, _ := cmd.Flags().GetBool("new")
			if !noResume {
				offerResume(a)
			}

			return chatLoop(ctx, a)
		},
	}
	cmd.Flags().Bool("new", false, "Start a fresh conversation without offering to resume")
	return cmd
}

// offerResume presents saved snapshots and restores the chosen one.
// Selection and restore failures both fall back to a fresh
// conversation; an unreadable snapshot must not block chatting.
func offerResume(a *app) {
	snapshots, err := a.session.List()
	if err != nil {
		a.logger.Warn("listing snapshots failed", "error", err)
		return
	}
	if len(snapshots) == 0 {
		return
	}

	options := []huh.Option[string]{huh.NewOption("Start fresh", "")}
	for _, name := range snapshots {
		options = append(options, huh.NewOption(name, name))
	}

	var choice string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Resume a saved conversation?").
			Options(options...).
			Value(&choice),
	))
	if err := form.Run(); err != nil || choice == "" {
		return
	}

	if err := a.session.Resume(choice); err != nil {
		fmt.Printf("Could not restore %s (%v), starting fresh.\n", choice, err)
		return
	}
	fmt.Printf("Resumed %s (%s)\n", choice, a.session.StatusLine())
}

func chatLoop(ctx context.Context, a *app) error {
	fmt.Println("Chatting with", a.session.Status().Model, "- /help for commands, /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Println("/save - snapshot the conversation now")
			fmt.Println("/status - show conversation stats")
			fmt.Println("/list - list saved snapshots")
			fmt.Println("/quit - save and exit")
			continue
		case "/save":
			name, err := a.session.SaveNow()
			if err != nil {
				fmt.Println("Save failed:", err)
			} else {
				fmt.Println("Saved as", name)
			}
			continue
		case "/status":
			fmt.Println(a.session.StatusLine())
			continue
		case "/list":
			names, err := a.session.List()
			if err != nil {
				fmt.Println("List failed:", err)
				continue
			}
			if len(names) == 0 {
				fmt.Println("No saved snapshots.")
				continue
			}
			for _, name := range names {
				fmt.Println(" ", name)
			}
			continue
		}

		fmt.Println("bot>", a.session.Submit(ctx, line))
	}
}
