// photocard - News photocard generation.
//
// Usage:
//
//	photocard [-o <file>] [--preset <path>] [--data <path>] [options]
//	photocard schema --preset <path>
//	photocard serve [--port 8080]
//	photocard init
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/xob0t/photocard/clients/server"
	"github.com/xob0t/photocard/pkg/generator"
	"github.com/xob0t/photocard/pkg/logging"
	"github.com/xob0t/photocard/pkg/template"
)

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}

	var err error
	switch cmd {
	case "init":
		err = runInit(args[1:])
	case "schema":
		err = runSchema(args[1:])
	case "serve":
		err = withLogger(args[1:], func(log *zap.Logger, rest []string) error {
			return server.RunServe(rest, log)
		})
	case "help", "-h", "--help":
		printUsage()
	case "render":
		err = run(args[1:])
	default:
		// Default: render mode (all flags on root).
		err = run(args)
	}
	if err != nil {
		fatal(err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("photocard", flag.ExitOnError)

	var (
		output     string
		presetPath string
		dataPath   string
		title      string
		message    string
		background string
		date       string
		debug      bool
	)

	fs.StringVar(&output, "o", "", "Output file path (.png, .bmp or .tiff)")
	fs.StringVar(&output, "output", "", "Output file path (.png, .bmp or .tiff)")
	fs.StringVar(&presetPath, "preset", "", "Path to .cardpack bundle or preset JSON (default: built-in)")
	fs.StringVar(&dataPath, "data", "", "Path to data.json (optional)")
	fs.StringVar(&title, "title", "", "Headline text")
	fs.StringVar(&message, "message", "", "Custom message text")
	fs.StringVar(&background, "background", "", "Background photo")
	fs.StringVar(&date, "date", "", "Date stamp text (default: today)")
	fs.BoolVar(&debug, "debug", false, "Verbose console logging")

	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	log, err := logging.New(debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	preset, cleanup, err := loadPreset(presetPath)
	if err != nil {
		return fmt.Errorf("load preset: %w", err)
	}
	defer cleanup()
	for _, w := range template.ValidatePreset(preset) {
		log.Warn(w)
	}

	// Load data (optional).
	data := &template.DataSpec{Blocks: make(map[string]template.BlockData)}
	if dataPath != "" {
		var warnings []string
		data, warnings, err = template.LoadData(dataPath)
		if err != nil {
			return fmt.Errorf("load data: %w", err)
		}
		for _, w := range warnings {
			log.Warn(w)
		}
	}
	applyFlags(data, title, message, background, date)

	// Validate.
	for _, w := range template.ValidateData(data, preset) {
		log.Warn(w)
	}

	renderer, err := template.NewRenderer(preset.Font.Path, log)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}

	log.Info("rendering preset", zap.String("preset", preset.Meta.Name))
	img, err := renderer.RenderPreset(preset, data)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if output == "" {
		output = generator.OutputName(headline(preset, data), ".png")
	}
	if err := generator.Generate(output, generator.Config{Image: img}); err != nil {
		return err
	}
	fmt.Printf("Done: %s\n", output)
	return nil
}

// applyFlags layers command-line overrides over data.json.
func applyFlags(data *template.DataSpec, title, message, background, date string) {
	if title != "" {
		b := data.Blocks["title"]
		b.Text = template.Ptr(title)
		data.Blocks["title"] = b
	}
	if message != "" {
		b := data.Blocks["message"]
		b.Text = template.Ptr(message)
		b.Visible = template.Ptr(true)
		data.Blocks["message"] = b
	}
	if background != "" {
		data.Background = background
	}
	if date != "" {
		data.Date = date
	}
}

// headline returns the title text the card will show.
func headline(preset *template.Preset, data *template.DataSpec) string {
	for _, b := range template.MergeData(preset, data) {
		if b.ID == "title" {
			return b.Text
		}
	}
	return ""
}

// loadPreset reads a .cardpack bundle or a standalone preset JSON. An empty
// path selects the built-in preset.
func loadPreset(path string) (*template.Preset, func(), error) {
	noop := func() {}
	if path == "" {
		p, _ := template.GetExampleJSON()
		preset, err := template.ParsePreset([]byte(p))
		return preset, noop, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cardpack", ".zip":
		return template.LoadPreset(path)
	}
	// Treat as standalone JSON.
	preset, err := template.ParsePresetFile(path)
	return preset, noop, err
}

func runSchema(args []string) error {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	var presetPath string
	fs.StringVar(&presetPath, "preset", "", "Path to .cardpack or preset JSON (default: built-in)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	preset, cleanup, err := loadPreset(presetPath)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Print(template.FormatSchema(preset))
	return nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var presetOut, dataOut string
	fs.StringVar(&presetOut, "preset", "preset.json", "Output path for sample preset")
	fs.StringVar(&dataOut, "data", "data.json", "Output path for sample data")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, d := template.GetExampleJSON()

	if err := os.WriteFile(presetOut, []byte(p), 0644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	if err := os.WriteFile(dataOut, []byte(d), 0644); err != nil {
		return fmt.Errorf("write data: %w", err)
	}

	fmt.Printf("Created: %s, %s\n", presetOut, dataOut)
	fmt.Println("Run: photocard -o card.png --preset preset.json --data data.json")
	return nil
}

// withLogger strips --debug from args and runs fn with the matching logger.
func withLogger(args []string, fn func(*zap.Logger, []string) error) error {
	debug := false
	rest := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--debug" || a == "-debug" {
			debug = true
			continue
		}
		rest = append(rest, a)
	}
	log, err := logging.New(debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()
	return fn(log, rest)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`photocard - News photocard generation (1080x1280)

USAGE:
    photocard [-o <file>] [--preset <path>] [--data <path>] [options]
    photocard schema [--preset <path>]
    photocard serve [--port 8080] [--debug]
    photocard init [options]

RENDER:
    --preset <path>        .cardpack bundle or standalone preset JSON
    --data <path>          Data JSON with overrides (optional)
    -o, --output <path>    Output file (.png, .bmp, .tif); default from the title
    --title <text>         Headline text
    --message <text>       Custom message text
    --background <path>    Background photo
    --date <text>          Date stamp text (default: today)
    --debug                Verbose console logging

UI SERVER:
    photocard serve [--port 8080]       Start the web UI editor

SCHEMA:
    photocard schema --preset <path>    Print preset's data.json format

EXAMPLES:
    photocard init
    photocard serve
    photocard --title "Bangladesh to build 100 cold storages" --background photo.jpg
    photocard -o card.png --preset news.cardpack --data data.json
    photocard schema --preset news.cardpack
`)
}
