package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/iburimskiy/lifequest/internal/field"
	"github.com/iburimskiy/lifequest/internal/field/termsurface"
	"github.com/iburimskiy/lifequest/internal/journal"
	"github.com/iburimskiy/lifequest/internal/progress"
	"github.com/iburimskiy/lifequest/internal/quest"
	"github.com/iburimskiy/lifequest/internal/store"
)

var (
	previewStage int
	previewFPS   int

	userSignature string
	csvOut        string
	csvIn         string
	statsPlain    bool

	configOut string
)

// previewCmd renders the particle field in the terminal
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview a realm's particle field in the terminal",
	Long: `Render the particle field of one evolution stage in the terminal.

Stages: 1 The Void, 2 The Garden, 3 The Crystal, 4 The Stars.
Press q, Esc or Ctrl-C to leave.`,
	RunE: runPreview,
}

// exportCSVCmd writes a traveler's chronicle as CSV
var exportCSVCmd = &cobra.Command{
	Use:   "export-csv",
	Short: "Export a traveler's quest history as CSV",
	RunE:  runExportCSV,
}

// importCSVCmd merges a CSV chronicle into a traveler's history
var importCSVCmd = &cobra.Command{
	Use:   "import-csv",
	Short: "Import quests from CSV into a traveler's history",
	Long: `Merge quests from a CSV file written by export-csv. Quests whose id is
already in the history are skipped; each new quest grants its XP.`,
	RunE: runImportCSV,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

// configInitCmd writes the effective configuration as YAML
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration as YAML",
	RunE:  runConfigInit,
}

// statsCmd prints progression and XP statistics
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a traveler's level and XP statistics",
	RunE:  runStats,
}

func init() {
	previewCmd.Flags().IntVar(&previewStage, "stage", 1, "Evolution stage to render (1-4)")
	previewCmd.Flags().IntVar(&previewFPS, "fps", 30, "Frames per second")

	exportCSVCmd.Flags().StringVarP(&userSignature, "user", "u", "", "Soul signature (required)")
	exportCSVCmd.Flags().StringVarP(&csvOut, "out", "o", "", "Output file (default: stdout)")
	exportCSVCmd.MarkFlagRequired("user")

	importCSVCmd.Flags().StringVarP(&userSignature, "user", "u", "", "Soul signature (required)")
	importCSVCmd.Flags().StringVarP(&csvIn, "in", "i", "", "CSV file to import (required)")
	importCSVCmd.MarkFlagRequired("user")
	importCSVCmd.MarkFlagRequired("in")

	configInitCmd.Flags().StringVarP(&configOut, "out", "o", "", "Output file (default: stdout)")
	configCmd.AddCommand(configInitCmd)

	statsCmd.Flags().StringVarP(&userSignature, "user", "u", "", "Soul signature (required)")
	statsCmd.Flags().BoolVar(&statsPlain, "plain", false, "Print raw markdown")
	statsCmd.MarkFlagRequired("user")
}

// previewOptions builds field options for a stage, tinting the glow with
// the stage palette at full strength so it reads on a terminal.
func previewOptions(stage int) field.Options {
	opts := field.DefaultOptions()
	opts.Gap = cfg.Field.Gap
	opts.Radius = cfg.Field.Radius
	opts.SpeedMin, opts.SpeedMax, opts.SpeedScale = cfg.Field.SpeedMin, cfg.Field.SpeedMax, cfg.Field.SpeedScale
	opts.Stage = stage
	if glow, err := field.ParseColor(progress.PaletteFor(stage).Glow); err == nil {
		glow.A = opts.GlowColor.A
		opts.GlowColor = glow
	}
	return opts
}

func runPreview(cmd *cobra.Command, args []string) error {
	if previewStage < 1 || previewStage > len(progress.Worlds) {
		return fmt.Errorf("stage must be between 1 and %d", len(progress.Worlds))
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer screen.Fini()

	host := termsurface.NewHost(screen)
	r := field.Mount(host, host.Surface(), previewOptions(previewStage))
	defer r.Stop()

	err = host.Run(cmd.Context(), previewFPS)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func loadQuests() ([]quest.Quest, progress.Stats, error) {
	profiles, closeStore, err := openProfiles()
	if err != nil {
		return nil, progress.Stats{}, err
	}
	defer closeStore()
	prof, err := profiles.Load(userSignature)
	if err != nil {
		return nil, progress.Stats{}, err
	}
	return prof.Quests, prof.Stats, nil
}

func runExportCSV(cmd *cobra.Command, args []string) error {
	quests, _, err := loadQuests()
	if err != nil {
		return err
	}
	if csvOut == "" {
		return journal.WriteCSV(cmd.OutOrStdout(), quests)
	}
	if err := journal.WriteCSVFile(csvOut, quests); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d quests to %s\n", len(quests), csvOut)
	return nil
}

func runImportCSV(cmd *cobra.Command, args []string) error {
	f, err := os.Open(csvIn)
	if err != nil {
		return fmt.Errorf("opening CSV: %w", err)
	}
	defer f.Close()
	incoming, err := journal.ReadCSV(f)
	if err != nil {
		return err
	}

	profiles, closeStore, err := openProfiles()
	if err != nil {
		return err
	}
	defer closeStore()
	prof, err := profiles.Load(userSignature)
	if err != nil {
		return err
	}
	merged, added := journal.Merge(prof.Quests, incoming)
	stats := prof.Stats
	for _, q := range added {
		stats = progress.AddXP(stats, q.XPAwarded)
	}
	if err := profiles.Save(store.Profile{Signature: userSignature, Stats: stats, Quests: merged}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Imported %d of %d quests, now level %d\n", len(added), len(incoming), stats.Level)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if configOut != "" {
		if err := cfg.WriteYAML(configOut); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote config to %s\n", configOut)
		return nil
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	defer enc.Close()
	return enc.Encode(cfg)
}

func runStats(cmd *cobra.Command, args []string) error {
	quests, stats, err := loadQuests()
	if err != nil {
		return err
	}
	md := statsMarkdown(userSignature, stats, journal.Summarize(quests))
	if statsPlain {
		_, err = io.WriteString(cmd.OutOrStdout(), md)
		return err
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("rendering stats: %w", err)
	}
	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

// statsMarkdown reports progression and XP statistics as markdown.
func statsMarkdown(signature string, st progress.Stats, sum journal.Summary) string {
	var b strings.Builder
	stage := progress.StageForLevel(st.Level)
	fmt.Fprintf(&b, "# %s\n\n", signature)
	fmt.Fprintf(&b, "**Level %d** %s, %d / %d XP, realm *%s*\n\n", st.Level, st.Title, st.XP, st.MaxXP, progress.WorldName(stage))
	fmt.Fprintf(&b, "%d quests, %d XP total\n", sum.Count, sum.TotalXP)
	if sum.Count == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "\nXP per quest: %.1f mean, %.1f std dev\n\n", sum.MeanXP, sum.StdDev)

	ranks := make([]string, 0, len(sum.ByRank))
	for r := range sum.ByRank {
		ranks = append(ranks, string(r))
	}
	sort.Strings(ranks)
	b.WriteString("| Rank | Quests |\n|---|---|\n")
	for _, r := range ranks {
		fmt.Fprintf(&b, "| %s | %d |\n", r, sum.ByRank[quest.Rank(r)])
	}
	return b.String()
}
