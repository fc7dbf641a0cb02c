package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/chickenlazy/taskadmin/internal/api"
	"github.com/chickenlazy/taskadmin/internal/app"
	"github.com/chickenlazy/taskadmin/internal/logging"
	"github.com/chickenlazy/taskadmin/internal/model"
	"github.com/chickenlazy/taskadmin/internal/session"
)

const loginTimeout = 15 * time.Second

func main() {
	// A .env file is optional; real env vars win either way.
	_ = godotenv.Load()

	configPath := flag.String("config", model.DefaultConfigPath(), "path to the config file")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Write the defaults on first run so users have a file to edit.
	if _, statErr := os.Stat(*configPath); os.IsNotExist(statErr) {
		if err := model.SaveConfig(*configPath, cfg); err != nil {
			log.Warn("writing default config failed", zap.Error(err))
		}
	}

	switch flag.Arg(0) {
	case "login":
		if err := runLogin(cfg, log); err != nil {
			fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Logged in.")
		return

	case "logout":
		if err := session.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "logout failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Logged out.")
		return
	}

	sess, err := session.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading session: %v\n", err)
		os.Exit(1)
	}
	if sess == nil || sess.Expired() {
		fmt.Fprintln(os.Stderr, "No active session. Run: taskadmin login")
		os.Exit(1)
	}

	client := api.NewClient(cfg.Server.BaseURL, sess, log)
	client.SetTimeout(time.Duration(cfg.Server.TimeoutSec) * time.Second)

	m := app.New(client, sess, cfg, log)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "running app: %v\n", err)
		os.Exit(1)
	}
}

// runLogin prompts for credentials, exchanges them for a token, and
// stores the session in the system keyring.
func runLogin(cfg *model.AppConfig, log *zap.Logger) error {
	var username, password string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	client := api.NewClient(cfg.Server.BaseURL, session.Static{}, log)
	client.SetTimeout(time.Duration(cfg.Server.TimeoutSec) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()

	result, err := client.Login(ctx, username, password)
	if err != nil {
		if msg := api.ServerMessage(err); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return err
	}

	return session.Save(&session.Session{
		ID:          result.ID,
		AccessToken: result.AccessToken,
	})
}
