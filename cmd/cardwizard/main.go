// cardwizard - Interactive photocard editor for the terminal.
//
// Usage:
//
//	cardwizard --article <file> [--background <image>] [options]
//	cardwizard --title <text> [--message <text>] [options]
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xob0t/photocard/pkg/generator"
	"github.com/xob0t/photocard/pkg/logging"
	"github.com/xob0t/photocard/pkg/styledtext"
	"github.com/xob0t/photocard/pkg/template"
	"github.com/xob0t/photocard/pkg/wizard"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "help", "-h", "--help":
			printUsage()
			return
		}
	}
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("cardwizard", flag.ExitOnError)

	var (
		presetPath  string
		articlePath string
		title       string
		message     string
		background  string
		output      string
		previewPath string
		budget      int
		debug       bool
	)

	fs.StringVar(&presetPath, "preset", "", "Preset JSON (default: built-in)")
	fs.StringVar(&articlePath, "article", "", "Article text file: first line title, rest body")
	fs.StringVar(&title, "title", "", "Headline text (without --article)")
	fs.StringVar(&message, "message", "", "Custom message text (without --article)")
	fs.StringVar(&background, "background", "", "Background photo")
	fs.StringVar(&output, "o", "", "Output file path (default: from the title)")
	fs.StringVar(&previewPath, "preview", "preview.png", "Preview file rewritten after every edit")
	fs.IntVar(&budget, "chunk", wizard.DefaultChunkBudget, "Characters per summarizer chunk")
	fs.BoolVar(&debug, "debug", false, "Verbose console logging")

	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}
	if articlePath == "" && title == "" {
		printUsage()
		return fmt.Errorf("--article or --title is required")
	}

	log, err := logging.New(debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	preset, err := loadPreset(presetPath)
	if err != nil {
		return fmt.Errorf("load preset: %w", err)
	}
	renderer, err := template.NewRenderer(preset.Font.Path, log)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}

	// Collaborators are built once here and shared by the wizard.
	summarizer := wizard.ChunkingSummarizer{Model: wizard.LeadSummarizer{Sentences: 1}, Budget: budget}
	w := wizard.New(preset, wizard.FileSource{}, summarizer, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	req := wizard.Request{Title: title, Caption: message, Background: background}
	if articlePath != "" {
		req = wizard.Request{URL: "file://" + articlePath, Background: background}
	}
	task, err := w.Submit(ctx, req)
	if err != nil {
		return err
	}
	if task != nil {
		fmt.Fprintln(out, "Processing article...")
		if err := task.Wait(); err != nil {
			return err
		}
	}

	previewer := wizard.NewPreviewer(wizard.RenderWith(renderer, preset), func(p wizard.Preview) {
		if p.Err != nil {
			log.Error("preview failed", zap.Uint64("seq", p.Seq), zap.Error(p.Err))
			return
		}
		if err := generator.Generate(previewPath, generator.Config{Image: p.Image}); err != nil {
			log.Error("write preview", zap.Error(err))
		}
	})
	defer previewer.Wait()

	d, _ := w.Draft()
	previewer.Request(d)
	printDraft(out, d)

	sc := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			fmt.Fprint(out, "> ")
			continue
		}
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "save":
			return save(w, renderer, preset, output, out)
		case "show":
			d, _ = w.Draft()
			printDraft(out, d)
		case "help":
			printCommands(out)
		default:
			d, err = edit(w, fields)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			} else {
				previewer.Request(d)
			}
		}
		fmt.Fprint(out, "> ")
	}
	return sc.Err()
}

// edit applies one editing command.
func edit(w *wizard.Wizard, f []string) (wizard.Draft, error) {
	switch f[0] {
	case "text":
		if len(f) < 3 {
			return wizard.Draft{}, errors.New("usage: text <block> <words...>")
		}
		return w.SetText(f[1], strings.Join(f[2:], " "))
	case "color":
		if len(f) != 5 {
			return wizard.Draft{}, errors.New("usage: color <block> <start> <end> <#rrggbb>")
		}
		n, err := atoi(f[2:4])
		if err != nil {
			return wizard.Draft{}, err
		}
		c, err := generator.ParseColor(f[4])
		if err != nil {
			return wizard.Draft{}, err
		}
		return w.SetColor(f[1], n[0], n[1], c)
	case "box":
		if len(f) != 7 && len(f) != 8 {
			return wizard.Draft{}, errors.New("usage: box <block> <x> <y> <width> <height> <size> [spacing]")
		}
		n, err := atoi(f[2:])
		if err != nil {
			return wizard.Draft{}, err
		}
		box := styledtext.LayoutBox{X: n[0], Y: n[1], MaxWidth: n[2], MaxHeight: n[3], FontSize: float64(n[4])}
		if len(n) == 6 {
			box.LineSpacing = n[5]
		}
		return w.SetBox(f[1], box)
	}
	return wizard.Draft{}, fmt.Errorf("unknown command %q (try help)", f[0])
}

func save(w *wizard.Wizard, r *template.Renderer, preset *template.Preset, output string, out io.Writer) error {
	d, err := w.Finalize()
	if err != nil {
		return err
	}
	img, err := r.Render(preset, d.Data(), d.Blocks())
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if output == "" {
		var title string
		if b, ok := d.Block(wizard.TitleBlock); ok {
			title = b.Text
		}
		output = generator.OutputName(title, ".png")
	}
	if err := generator.Generate(output, generator.Config{Image: img}); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved: %s\n", output)
	return nil
}

func printDraft(out io.Writer, d wizard.Draft) {
	for _, b := range d.Blocks() {
		fmt.Fprintf(out, "[%s] %q\n", b.ID, b.Text)
		fmt.Fprintf(out, "    box %d %d %d %d size %g\n", b.Box.X, b.Box.Y, b.Box.MaxWidth, b.Box.MaxHeight, b.Box.FontSize)
		for _, r := range b.Colors.Ranges() {
			fmt.Fprintf(out, "    %s\n", r)
		}
	}
}

func atoi(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, s := range fields {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		out[i] = n
	}
	return out, nil
}

func loadPreset(path string) (*template.Preset, error) {
	if path == "" {
		p, _ := template.GetExampleJSON()
		return template.ParsePreset([]byte(p))
	}
	return template.ParsePresetFile(path)
}

func printCommands(out io.Writer) {
	fmt.Fprint(out, `COMMANDS:
    text <block> <words...>                       Replace text; colors follow unchanged words
    color <block> <start> <end> <#rrggbb>         Color characters [start, end)
    box <block> <x> <y> <w> <h> <size> [spacing]  Move or resize a block
    show                                          Print blocks and color ranges
    save                                          Render the final card and exit
    quit                                          Exit without saving
`)
}

func printUsage() {
	fmt.Println(`cardwizard - Interactive photocard editor

USAGE:
    cardwizard --article <file> [options]
    cardwizard --title <text> [--message <text>] [options]

OPTIONS:
    --preset <path>      Preset JSON (default: built-in)
    --article <path>     Article text file, summarized into the message
    --title <text>       Headline text
    --message <text>     Custom message text
    --background <path>  Background photo
    -o <path>            Output file (.png, .bmp, .tif)
    --preview <path>     Preview file (default: preview.png)
    --chunk <n>          Characters per summarizer chunk (default: 800)
    --debug              Verbose console logging

EXAMPLES:
    cardwizard --title "Bangladesh to build 100 cold storages" --background photo.jpg
    cardwizard --article story.txt --background photo.jpg -o card.png`)
}
