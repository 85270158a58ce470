// Command defender runs the anti-procrastination daemon: the escalation
// scheduler, the task defense monitor, and the delivery channels.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"github.com/solomonsojay/TaskDefender-sub000/internal/config"
	"github.com/solomonsojay/TaskDefender-sub000/internal/defense"
	"github.com/solomonsojay/TaskDefender-sub000/internal/dispatch"
	"github.com/solomonsojay/TaskDefender-sub000/internal/history"
	"github.com/solomonsojay/TaskDefender-sub000/internal/logging"
	"github.com/solomonsojay/TaskDefender-sub000/internal/reminder"
	"github.com/solomonsojay/TaskDefender-sub000/internal/scheduler"
	"github.com/solomonsojay/TaskDefender-sub000/internal/task"
)

func main() {
	log.Println("taskdefender - deadline defense daemon")
	log.Println("======================================")

	// Load .env file (optional - won't error if missing)
	if err := godotenv.Load(); err != nil {
		logging.Info("config", "No .env file found, using environment variables")
	} else {
		logging.Info("config", "Loaded .env file")
	}

	cfgPath := os.Getenv("DEFENDER_CONFIG")
	if cfgPath == "" {
		cfgPath = "defender.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if err := os.MkdirAll(cfg.StatePath, 0755); err != nil {
		log.Fatalf("Failed to create state directory %s: %v", cfg.StatePath, err)
	}

	// Stores
	taskStore := task.NewFileStore(cfg.StatePath)
	reminderStore := reminder.NewStore(cfg.StatePath)
	interventionLog := history.NewLog(cfg.StatePath)

	if err := taskStore.Load(); err != nil {
		logging.Warn("main", "failed to load tasks: %v", err)
	}
	if err := reminderStore.Load(); err != nil {
		logging.Warn("main", "failed to load reminders: %v", err)
	}
	if err := interventionLog.Load(); err != nil {
		logging.Warn("main", "failed to load intervention log: %v", err)
	}

	var archive *history.Archive
	if cfg.History.ArchiveEnabled && cfg.ArchivePath() != "" {
		archive, err = history.OpenArchive(cfg.ArchivePath())
		if err != nil {
			logging.Warn("main", "archive unavailable: %v", err)
		} else {
			interventionLog.SetArchive(archive)
		}
	}

	// Channels
	var synth dispatch.Synthesizer
	if cfg.Voice.Enabled {
		synth = consoleSynth{}
	}

	var tones *dispatch.TonePlayer
	if cfg.Tone.Enabled {
		tones = dispatch.NewTonePlayer(terminalBell, cfg.Tone.Volume)
	}

	var push dispatch.Notifier
	var discordSession *discordgo.Session
	if cfg.Discord.Token != "" && cfg.Discord.ChannelID != "" {
		discordSession, err = discordgo.New("Bot " + cfg.Discord.Token)
		if err != nil {
			logging.Warn("main", "discord unavailable: %v", err)
		} else if err := discordSession.Open(); err != nil {
			logging.Warn("main", "discord connect failed: %v", err)
			discordSession = nil
		} else {
			push = dispatch.NewDiscordNotifier(discordSession, cfg.Discord.ChannelID)
			logging.Info("main", "Discord push channel connected")
		}
	}

	pool := dispatch.NewMessagePool()
	if err := pool.LoadFile(cfg.MessagePoolPath()); err != nil {
		logging.Warn("main", "custom message pool: %v", err)
	}

	modal := dispatch.NewModalEmitter()
	dispatcher := dispatch.New(synth, tones, push, modal, pool)

	// Scheduler + defense monitor
	sched := scheduler.New(reminderStore, interventionLog, dispatcher, scheduler.Config{
		CheckInterval:          time.Duration(cfg.Scheduler.CheckIntervalSeconds) * time.Second,
		DefaultSnoozeOptions:   cfg.Scheduler.DefaultSnoozeMinutes,
		DefaultIntervalMinutes: cfg.Scheduler.DefaultIntervalMinutes,
	})
	monitor := defense.New(taskStore, sched, defense.Config{
		PollInterval: time.Duration(cfg.Defense.PollIntervalMinutes) * time.Minute,
		Character:    cfg.Defense.Character,
		ToneID:       cfg.Defense.Tone,
	})

	// Surface modal events; a real presenter would render these and call
	// acknowledge/snooze/dismiss back.
	go func() {
		for ev := range modal.Events() {
			logging.Info("modal", "ACTION REQUIRED: %s - %s (snooze options %v, id %s)",
				ev.Title, logging.Truncate(ev.Message, 80), ev.SnoozeOptions, ev.ReminderID)
		}
	}()

	sched.Start()
	monitor.Start()

	logging.Info("main", "All subsystems started. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logging.Info("main", "Shutting down...")

	monitor.Stop()
	sched.Stop()
	if tones != nil {
		tones.Stop()
	}
	if discordSession != nil {
		discordSession.Close()
	}

	if err := reminderStore.Save(); err != nil {
		logging.Warn("main", "failed to save reminders: %v", err)
	}
	if err := interventionLog.Save(); err != nil {
		logging.Warn("main", "failed to save intervention log: %v", err)
	}
	if archive != nil {
		archive.Close()
	}

	logging.Info("main", "Goodbye!")
}

// consoleSynth stands in for a platform text-to-speech facility on a
// headless install; it renders the spoken line to the log.
type consoleSynth struct{}

func (consoleSynth) Speak(text string, rate, pitch, volume float64, voiceHint string) error {
	logging.Info("voice", "(rate %.2f pitch %.2f vol %.2f %s) %q", rate, pitch, volume, voiceHint, text)
	return nil
}

// terminalBell is the oscillator primitive for terminal installs: one BEL
// per pulse, frequency and duration left to the terminal.
func terminalBell(frequency float64, duration time.Duration, volume float64) error {
	_, err := fmt.Fprint(os.Stderr, "\a")
	return err
}
