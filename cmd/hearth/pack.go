package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/phanxgames/hearth/hotreload"
	"github.com/phanxgames/hearth/internal/config"
)

func packCmd(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	manifest := fs.String("manifest", "", "HCL component manifest")
	out := fs.String("o", "", "output unit image")
	level := fs.String("log-level", "info", "log level")
	_ = fs.Parse(args)

	if *manifest == "" || *out == "" {
		fs.Usage()
		return fmt.Errorf("pack needs -manifest and -o")
	}

	logger, err := newLogger(*level, "console")
	if err != nil {
		return err
	}
	defer logger.Sync()

	n, err := pack(*manifest, *out)
	if err != nil {
		return err
	}
	logger.Info("unit packed", zap.String("manifest", *manifest), zap.String("out", *out), zap.Int("components", n))
	return nil
}

// pack writes the unit image for the components declared in manifestPath.
func pack(manifestPath, outPath string) (int, error) {
	descs, err := config.LoadManifest(manifestPath)
	if err != nil {
		return 0, err
	}
	image, err := hotreload.EncodeImage(descs)
	if err != nil {
		return 0, fmt.Errorf("encode image: %w", err)
	}
	if err := os.WriteFile(outPath, image, 0o644); err != nil {
		return 0, fmt.Errorf("write image: %w", err)
	}
	return len(descs), nil
}
