package main

import (
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	alwaysrange "github.com/always-cache/always-range"
	"github.com/always-cache/always-range/config"
	"github.com/always-cache/always-range/store"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// CLI flags
	configFilenameFlag string
	portFlag           int
	dbFilenameFlag     string
	noRangesFlag       bool
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "Path to YAML or TOML config file")
	flag.IntVar(&portFlag, "port", 0, "Port to listen on (overrides config, default 8080)")
	flag.StringVar(&dbFilenameFlag, "db", "", "Representation DB file name (use 'memory' for in-memory db, default range.db)")
	flag.BoolVar(&noRangesFlag, "no-ranges", false, "Ignore Range headers and always send full representations")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	var cfg config.Config
	if configFilenameFlag != "" {
		var err error
		if cfg, err = config.Load(configFilenameFlag); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	// flags override config file values
	if portFlag != 0 {
		cfg.Port = portFlag
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if dbFilenameFlag != "" {
		cfg.DB = dbFilenameFlag
	}
	if cfg.DB == "" {
		cfg.DB = "range.db"
	}
	if logFilenameFlag != "" {
		cfg.LogFile = logFilenameFlag
	}

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if cfg.LogFile != "" {
		if logFileOutput, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Timestamp().Str("version", version).Logger()

	// set up sqlite memory provider
	dbFilename := cfg.DB
	if dbFilename == "memory" {
		dbFilename = ""
	}
	reps, err := store.NewSQLiteStore(dbFilename)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DB).Msg("Could not open representation store")
	}
	defer reps.Close()

	for _, res := range cfg.Resources {
		if err := preload(reps, res); err != nil {
			log.Fatal().Err(err).Str("path", res.Path).Msg("Could not load resource")
		}
		log.Info().Str("path", res.Path).Str("file", res.File).Msg("Loaded resource")
	}

	arange := alwaysrange.New(alwaysrange.Config{
		Store:         reps,
		Logger:        &log.Logger,
		DisableRanges: noRangesFlag,
	})
	log.Info().Msgf("Serving representations from %s on port %v", cfg.DB, cfg.Port)
	err = http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), alwaysrange.NewRouter(arange))

	if err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

// preload stores the file of a configured resource, using the file's
// modification time as Last-Modified.
func preload(reps store.RepresentationStore, res config.Resource) error {
	info, err := os.Stat(res.File)
	if err != nil {
		return errors.Wrap(err, "failed to stat resource file")
	}
	body, err := os.ReadFile(res.File)
	if err != nil {
		return errors.Wrap(err, "failed to read resource file")
	}
	contentType := res.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(res.File))
	}
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return reps.Put(store.Representation{
		Key:          res.Path,
		ContentType:  contentType,
		LastModified: info.ModTime().UTC().Truncate(time.Second),
		ETag:         alwaysrange.EntityTag(body),
		Bytes:        body,
	})
}
