package main

import (
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcoenen/iffit"
	"github.com/rcoenen/iffit/cache"
	"github.com/rcoenen/iffit/ilbm"
	"github.com/rcoenen/iffit/oops"
	"github.com/rcoenen/iffit/thumbnail"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const defaultDB = "iffit.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}

	zerolog.ErrorStackMarshaler = oops.ZerologStackMarshaler
}

func newLogger(c *cli.Context) zerolog.Logger {
	if !c.Bool("verbose") {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func printAttributes(w io.Writer, file string, key uint64, md *ilbm.Metadata) {
	a := iffit.AttributesFrom(md)

	fmt.Fprintf(w, "File:        %s\n", file)
	fmt.Fprintf(w, "Key:         %016x\n", key)
	fmt.Fprintf(w, "Size:        %dx%d\n", a.PixelWidth, a.PixelHeight)
	fmt.Fprintf(w, "Planes:      %d\n", a.BitsPerSample)
	fmt.Fprintf(w, "Mode:        %s\n", a.ColorSpace)
	fmt.Fprintf(w, "Compression: %d\n", md.Compression)
	fmt.Fprintf(w, "Palette:     %d colors\n", md.PaletteColors)
	if a.Title != "" {
		fmt.Fprintf(w, "Title:       %s\n", a.Title)
	}
	if len(a.Authors) > 0 {
		fmt.Fprintf(w, "Authors:     %s\n", strings.Join(a.Authors, ", "))
	}
	if a.Copyright != "" {
		fmt.Fprintf(w, "Copyright:   %s\n", a.Copyright)
	}
	if a.Comment != "" {
		fmt.Fprintf(w, "Comment:     %s\n", a.Comment)
	}
	if md.Truncated {
		fmt.Fprintln(w, "Warning:     file is truncated")
	}
}

func decodeFile(file string) (image.Image, string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	return image.Decode(f)
}

func writeImage(file string, m image.Image, colors int) error {
	format, err := thumbnail.FormatFromPath(file)
	if err != nil {
		return err
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}

	if err := thumbnail.Encode(f, m, format, colors); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func main() {
	app := cli.NewApp()

	app.Name = "iffit"
	app.Usage = "Amiga IFF ILBM image utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"IFFIT_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "info",
			Usage:       "Print image attributes",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				file := c.Args().First()
				b, err := os.ReadFile(file)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				md, err := ilbm.ParseMetadata(b)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				printAttributes(c.App.Writer, file, cache.Key(b), md)

				return nil
			},
		},
		{
			Name:        "decode",
			Usage:       "Decode an image to PNG",
			Description: "",
			ArgsUsage:   "FILE [OUTPUT]",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "preview",
					Usage: "scale to preview size",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := newLogger(c)

				file := c.Args().First()
				out := c.Args().Get(1)
				if out == "" {
					out = strings.TrimSuffix(file, filepath.Ext(file)) + ".png"
				}

				m, format, err := decodeFile(file)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				b := m.Bounds()
				logger.Info().Str("file", file).Str("format", format).Int("width", b.Dx()).Int("height", b.Dy()).Msg("Decoded image")

				if c.Bool("preview") {
					m = thumbnail.Scale(m, thumbnail.PreviewSize(b.Dx(), b.Dy()))
				}

				if err := writeImage(out, m, 0); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "thumb",
			Usage:       "Write a thumbnail of an image",
			Description: "",
			ArgsUsage:   "FILE OUTPUT",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "size",
					Value: thumbnail.DefaultSize,
					Usage: "thumbnail bounding box",
				},
				&cli.IntFlag{
					Name:  "colors",
					Value: 256,
					Usage: "number of colors in GIF output",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, _, err := decodeFile(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				size := c.Int("size")
				if err := writeImage(c.Args().Get(1), thumbnail.Render(m, size, size), c.Int("colors")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Scan filesystem, index images and generate thumbnails",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "workers",
					Usage: "number of directories scanned at once",
				},
				&cli.IntFlag{
					Name:  "size",
					Value: thumbnail.DefaultSize,
					Usage: "thumbnail bounding box",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := newLogger(c)

				db, err := iffit.NewIndexDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				m := iffit.New(db, logger, iffit.WithWorkers(c.Int("workers")), iffit.WithThumbnailSize(c.Int("size")))

				if err := m.Scan(c.Args().First()); err != nil {
					logger.Error().Stack().Err(err).Msg("Scan failed")
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "find",
			Usage:       "List indexed images by color mode",
			Description: "Modes are Indexed, EHB, HAM6, HAM8, \"Direct 24-bit\" and \"Direct 32-bit\"",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "mode",
					Usage:    "color mode label",
					Required: true,
				},
			},
			Action: func(c *cli.Context) error {
				db, err := iffit.NewIndexDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				records, err := db.FindByColorSpace(c.String("mode"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for _, r := range records {
					fmt.Fprintf(c.App.Writer, "%s\t%dx%d\t%s\n", r.Path, r.PixelWidth, r.PixelHeight, r.Title)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
