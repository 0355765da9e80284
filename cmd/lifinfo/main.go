// Command lifinfo inspects LIF and LOF microscopy containers.
//
// It prints the image catalog of a local file or an s3:// object, optionally
// as JSON, with the raw XML metadata and per-image pixel statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lifio/lif/lif"
	lifs3 "github.com/lifio/lif/lif/s3"
)

func main() {
	var (
		configPath = flag.String("config", "lifinfo.yaml", "Path to YAML config file")
		initConfig = flag.Bool("init-config", false, "Write the default config file and exit")
		jsonOut    = flag.Bool("json", false, "Emit the container summary as JSON")
		metadata   = flag.Bool("metadata", false, "Dump the XML metadata tree as JSON")
		stats      = flag.Bool("stats", false, "Read pixel data and print per-image statistics")
		imageExpr  = flag.String("image", "", "Restrict -stats to images matching this regular expression")
		memoryMap  = flag.Bool("mmap", false, "Memory-map local containers instead of reading them")
		keepSingle = flag.Bool("keep-singletons", false, "Keep length-one axes in reported shapes")
		verbose    = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	if *initConfig {
		if err := writeDefaultConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *configPath)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: lifinfo [flags] <file.lif | file.lof | s3://bucket/key>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *jsonOut {
		cfg.Output.Format = "json"
	}
	if *metadata {
		cfg.Output.Metadata = true
	}
	if *stats {
		cfg.Output.Stats = true
	}
	if *memoryMap {
		cfg.Read.MemoryMap = true
	}
	if *keepSingle {
		cfg.Read.KeepSingletons = true
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	if err := run(flag.Arg(0), cfg, *imageExpr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(target string, cfg *Config, imageExpr string) error {
	logger, err := buildLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	lif.SetLogger(logger)

	var opts []lif.Option
	if cfg.Read.MemoryMap {
		opts = append(opts, lif.WithMemoryMapping())
	}
	if cfg.Read.KeepSingletons {
		opts = append(opts, lif.KeepSingletonAxes())
	}

	ctx := context.Background()
	f, err := openTarget(ctx, target, cfg, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	switch cfg.Output.Format {
	case "json":
		if err := printJSON(f, cfg.Output.Metadata); err != nil {
			return err
		}
	case "text":
		printText(target, f)
		if cfg.Output.Metadata {
			out, err := lif.MetadataJSON(f.Metadata())
			if err != nil {
				return fmt.Errorf("encoding metadata: %w", err)
			}
			fmt.Printf("\n%s\n", out)
		}
	default:
		return fmt.Errorf("unknown output format %q", cfg.Output.Format)
	}

	if cfg.Output.Stats {
		return printStats(f, imageExpr)
	}
	return nil
}

// openTarget opens a local path or an s3://bucket/key URL.
func openTarget(ctx context.Context, target string, cfg *Config, opts []lif.Option) (*lif.File, error) {
	if !strings.HasPrefix(target, "s3://") {
		return lif.OpenFile(target, opts...)
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(target, "s3://"), "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("malformed S3 URL %q, want s3://bucket/key", target)
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.S3.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.S3.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}
	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		if cfg.S3.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	store, err := lifs3.New(client, lifs3.Config{Bucket: bucket})
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, key, opts...)
}

func buildLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		zcfg.Level = lvl
	}
	return zcfg.Build()
}

func printJSON(f *lif.File, withMetadata bool) error {
	out, err := f.SummaryJSON()
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	fmt.Printf("%s\n", out)

	if withMetadata {
		out, err := lif.MetadataJSON(f.Metadata())
		if err != nil {
			return fmt.Errorf("encoding metadata: %w", err)
		}
		fmt.Printf("%s\n", out)
	}
	return nil
}

func printText(target string, f *lif.File) {
	fmt.Printf("=== %s ===\n\n", target)

	fmt.Printf("Name:    %s\n", f.Name())
	fmt.Printf("Version: %d\n", f.Version())
	if f.IsLOF() {
		fmt.Printf("Layout:  single object (LOF)\n")
	}
	fmt.Printf("Size:    %d bytes\n", f.Size())
	if t := f.CreatedAt(); !t.IsZero() {
		fmt.Printf("Created: %s\n", t.Format(time.RFC3339))
	}
	for _, err := range f.MetadataErrors() {
		fmt.Printf("WARNING: %v\n", err)
	}
	fmt.Println()

	walkCollection(f.Root(), "", 0)
}

func walkCollection(c *lif.Collection, indent string, depth int) {
	if depth > 20 {
		fmt.Printf("%s[max depth reached]\n", indent)
		return
	}

	name := c.Name()
	if name == "" {
		name = "/"
	}
	fmt.Printf("%sCollection %q:\n", indent, name)

	for _, im := range c.Images() {
		printImage(im, indent+"  ")
	}
	for _, sub := range c.Collections() {
		walkCollection(sub, indent+"  ", depth+1)
	}
}

func printImage(im *lif.Image, indent string) {
	fmt.Printf("%sImage %q:\n", indent, im.Name())
	if err := im.Err(); err != nil {
		fmt.Printf("%s  ERROR: %v\n", indent, err)
		return
	}

	fmt.Printf("%s  Axes:  %s\n", indent, axesLabel(im))
	fmt.Printf("%s  Shape: %v\n", indent, im.Shape())
	fmt.Printf("%s  Pixel: %s\n", indent, im.PixelType())

	channels := im.Channels()
	tags := make([]string, len(channels))
	for i, ch := range channels {
		tags[i] = ch.Tag.String()
	}
	fmt.Printf("%s  Channels: %d [%s]\n", indent, len(channels), strings.Join(tags, " "))

	if tl := im.Tiles(); tl != nil {
		fmt.Printf("%s  Tiles: %d (%d rows, %d cols)\n", indent, len(tl.Tiles), tl.Rows, tl.Cols)
	}
	if stamps := im.Timestamps(); len(stamps) > 0 {
		fmt.Printf("%s  Frames: %d, first %s\n", indent,
			len(stamps), stamps[0].Format(time.RFC3339))
	}
	fmt.Printf("%s  Block: %s (%d bytes)\n", indent, im.MemoryBlock(), im.NBytes())
}

func axesLabel(im *lif.Image) string {
	var b strings.Builder
	for _, ax := range im.Axes() {
		b.WriteString(ax.String())
	}
	return b.String()
}

func printStats(f *lif.File, expr string) error {
	images := f.Images()
	if expr != "" {
		var err error
		images, err = f.FindImages(expr)
		if err != nil {
			return err
		}
	}

	fmt.Println()
	for _, im := range images {
		arr, err := im.Read()
		if err != nil {
			fmt.Printf("%s: read failed: %v\n", im.Path(), err)
			continue
		}
		vals := arr.Float64s()
		if len(vals) == 0 {
			fmt.Printf("%s: no samples\n", im.Path())
			continue
		}
		fmt.Printf("%s: n=%d min=%g max=%g mean=%.6g std=%.6g\n",
			im.Path(), len(vals),
			floats.Min(vals), floats.Max(vals),
			stat.Mean(vals, nil), stat.StdDev(vals, nil))
	}
	return nil
}
