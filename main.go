package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iburimskiy/lifequest/internal/config"
	"github.com/iburimskiy/lifequest/internal/game"
	"github.com/iburimskiy/lifequest/internal/haptic"
	"github.com/iburimskiy/lifequest/internal/logging"
	"github.com/iburimskiy/lifequest/internal/quest"
	"github.com/iburimskiy/lifequest/internal/session"
	"github.com/iburimskiy/lifequest/internal/store"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lifequest",
	Short: "Life Quest - a journal that turns your deeds into quests",
	Long: `Life Quest is a journal rendered over a living particle field.

Write what you did; an oracle ranks the deed and awards XP. Levels evolve
the field through four realms. Run without arguments to open the window.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runApp,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file layered over the defaults")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(exportCSVCmd)
	rootCmd.AddCommand(importCSVCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openProfiles opens the profile database named by the config.
func openProfiles() (*store.Profiles, func(), error) {
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, nil, err
	}
	db, err := store.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Profile store opened", zap.String("path", db.Path()))
	return store.NewProfiles(db), func() { _ = db.Close() }, nil
}

// newClassifier returns the Gemini classifier, or one that always fails
// with quest.ErrNoAPIKey so entries stay in the input box.
func newClassifier(ctx context.Context) quest.Classifier {
	c, err := quest.NewGeminiClassifier(ctx, cfg.Oracle.APIKey(), cfg.Oracle.Model, logger)
	if err != nil {
		logger.Warn("Oracle unavailable, deeds cannot be weighed", zap.Error(err))
		return quest.ClassifierFunc(func(context.Context, string) (quest.Verdict, error) {
			return quest.Verdict{}, err
		})
	}
	return c
}

func newHaptics() haptic.Sink {
	if !cfg.Haptics.Enabled {
		return haptic.Nop{}
	}
	return haptic.NewAudioSink(cfg.Haptics.SampleRate, cfg.Haptics.Frequency, logger)
}

func runApp(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	profiles, closeStore, err := openProfiles()
	if err != nil {
		return err
	}
	defer closeStore()

	sess := session.New(profiles, newClassifier(ctx), newHaptics(), logger, session.OptionsFrom(cfg))
	if err := sess.Resume(); err != nil {
		logger.Warn("Could not resume last traveler", zap.Error(err))
	}

	g := game.New(ctx, cfg, sess, nil, logger)
	defer g.Close()

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
