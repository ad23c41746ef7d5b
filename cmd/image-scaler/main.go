package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	imagescaler "github.com/menta2k/image-scaler"
	"github.com/menta2k/image-scaler/internal/config"
	"github.com/menta2k/image-scaler/internal/utils"
)

func main() {
	var in, outDir, cfgPath, screens string
	var ppi float64
	var quality int
	var lossless, debug, showVersion bool

	flag.StringVar(&in, "in", "", "input image path (jpg/png/gif/tiff/bmp/webp)")
	flag.StringVar(&outDir, "out", "", "output base directory (default: config or working directory)")
	flag.StringVar(&cfgPath, "config", "", "config file (json or yaml); defaults to ~/.config/image-scaler/config.json if present")
	flag.StringVar(&screens, "screens", "", "target screens in inches, e.g. BIG=40x30,MED=16x12,SMALL=3x5,THUMB=0.5x0.5")
	flag.Float64Var(&ppi, "ppi", 0, "resolution in pixels per inch (default 72)")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP output quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP output lossless mode")
	flag.BoolVar(&debug, "debug", false, "development logging at debug level")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(imagescaler.GetVersion())
		return
	}
	if in == "" && flag.NArg() == 1 {
		in = flag.Arg(0)
	}
	if in == "" {
		log.Fatalf("usage: %s -in photo.jpg [-out dir] [-ppi 72] [-screens BIG=40x30,...] [-config file] [-quality 85] [-lossless]", filepath.Base(os.Args[0]))
	}

	if cfgPath == "" && utils.FileExists(config.GetConfigPath()) {
		cfgPath = config.GetConfigPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// flags win over file and environment
	if outDir != "" {
		cfg.Output.OutputDir = outDir
	}
	if ppi != 0 {
		cfg.Scaler.PPI = ppi
	}
	if quality != 0 {
		cfg.Output.Quality = quality
	}
	if lossless {
		cfg.Output.Lossless = true
	}
	if debug {
		cfg.Log.Development = true
		cfg.Log.Level = "debug"
	}
	if screens != "" {
		parsed, err := utils.ParseScreens(screens)
		if err != nil {
			log.Fatal(err)
		}
		cfg.Scaler.Screens = parsed
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	scaler, err := imagescaler.NewWithConfig(cfg.AnalyzerConfig(), cfg.ScalerConfig())
	if err != nil {
		logger.Fatal("Failed to create scaler", zap.Error(err))
	}
	scaler.SetLogger(logger)

	if !utils.IsImageFile(in) {
		logger.Warn("input does not have a known image extension", zap.String("input", in))
	}

	src, err := scaler.LoadImage(in)
	if err != nil {
		logger.Fatal("Failed to load image", zap.String("input", in), zap.Error(err))
	}
	info := scaler.GetImageInfo(src)
	logger.Info("loaded image",
		zap.String("input", in),
		zap.String("format", src.Format),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.Float64("ppi", cfg.Scaler.PPI),
	)

	paths, err := scaler.SaveMultipleSizes(src, cfg.Output.OutputDir)
	for _, p := range paths {
		logger.Info("wrote", zap.String("path", p), zap.String("size", utils.FormatFileSize(utils.FileSize(p))))
	}
	if err != nil {
		logger.Fatal("Failed to save sizes", zap.Int("written", len(paths)), zap.Error(err))
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}
