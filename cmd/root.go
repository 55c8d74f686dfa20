// Package cmd wires the linemark engine to its command-line surface.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"linemark/internal/config"
	"linemark/internal/log"
	"linemark/internal/preview"
	"linemark/internal/render"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "linemark [file]",
	Short:   "Render Markdown-like text into structured lines",
	Long: `Renders plain text through linemark's line and inline grammars and
prints the result as styled terminal output or as the structured
rendered-line JSON the engine hands to embedding hosts.

Reads from stdin when no file is given.`,
	Args:    cobra.MaximumNArgs(1),
	Version: version,
	RunE:    runRender,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/linemark/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false,
		"enable debug logging")
	rootCmd.Flags().Bool("json", false,
		"emit the rendered-line structure as JSON")
	rootCmd.Flags().IntP("width", "w", 0,
		"cap rendered width (0 = no cap)")
	rootCmd.Flags().Bool("hide-marks", false,
		"hide syntax markers in the preview")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("render.width", rootCmd.Flags().Lookup("width"))
}

// SetVersion sets the version string shown by --version.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("debug", defaults.Debug)
	viper.SetDefault("render.width", defaults.Render.Width)
	viper.SetDefault("render.show_marks", defaults.Render.ShowMarks)
	viper.SetDefault("render.style", defaults.Render.Style)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .linemark/config.yaml (current directory)
		// 2. ~/.config/linemark/config.yaml (user config)
		if _, err := os.Stat(".linemark/config.yaml"); err == nil {
			viper.SetConfigFile(".linemark/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "linemark"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	// A missing config file just means defaults.
	_ = viper.ReadInConfig()
	_ = viper.Unmarshal(&cfg)

	if cfg.Debug {
		path := cfg.LogFile
		if path == "" {
			path = config.DefaultLogFilePath()
		}
		if path != "" {
			if _, err := log.Init(path); err == nil {
				log.Info(log.CatCLI, "debug logging enabled", "path", path)
			}
		}
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	lines, err := readLines(args)
	if err != nil {
		return err
	}

	doc, err := render.New(cfg.DocumentOptions()...)
	if err != nil {
		return fmt.Errorf("building grammar: %w", err)
	}
	rendered := doc.Parse(lines)

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), doc)
	}

	hideMarks, _ := cmd.Flags().GetBool("hide-marks")
	p := preview.New(preview.Options{
		Width:     cfg.Render.Width,
		ShowMarks: cfg.Render.ShowMarks && !hideMarks,
		Light:     cfg.Render.Style == "light",
	})
	fmt.Fprintln(cmd.OutOrStdout(), p.Render(rendered))
	return nil
}

// renderedDoc is the JSON shape of a parsed document.
type renderedDoc struct {
	Lines []renderedDocLine `json:"lines"`
}

type renderedDocLine struct {
	Type  string `json:"type"`
	Spans any    `json:"spans"`
}

func writeJSON(w io.Writer, doc *render.Document) error {
	out := renderedDoc{Lines: make([]renderedDocLine, 0, doc.LineCount())}
	for i, line := range doc.Rendered() {
		tag, err := doc.LineTypeOf(i)
		if err != nil {
			return err
		}
		out.Lines = append(out.Lines, renderedDocLine{Type: tag, Spans: line.Spans})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readLines(args []string) ([]string, error) {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}
