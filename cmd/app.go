package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/cloudcleaner/cloudcleaner/internal/cleanup"
	"github.com/cloudcleaner/cloudcleaner/internal/config"
	"github.com/cloudcleaner/cloudcleaner/internal/discovery"
	"github.com/cloudcleaner/cloudcleaner/internal/logging"
	"github.com/cloudcleaner/cloudcleaner/internal/safety"
	"github.com/cloudcleaner/cloudcleaner/internal/store"
)

// app wires configuration, stores and the classifier for one command run.
type app struct {
	cfg        *config.Config
	fs         afero.Fs
	classifier *safety.Classifier
	exclusions *store.FileExclusions
	history    *store.JSONLHistory
	logger     zerolog.Logger
}

func newApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: opts.configFile})
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	exclusions := store.NewFileExclusions(fs, cfg.Settings.ExclusionsFile)

	classifier, err := safety.NewClassifier(cfg.Profile.Rules(), exclusions, safety.WithFs(fs))
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		fs:         fs,
		classifier: classifier,
		exclusions: exclusions,
		history:    store.NewJSONLHistory(fs, cfg.Settings.HistoryFile),
		logger:     logging.GetLogger("cmd"),
	}, nil
}

func (a *app) engine() *discovery.Engine {
	return discovery.NewEngine(a.cfg.Profile, a.classifier,
		discovery.WithFs(a.fs),
		discovery.WithWorkers(a.cfg.Settings.Workers),
	)
}

func (a *app) executor() *cleanup.Executor {
	return cleanup.NewExecutor(a.classifier,
		cleanup.WithFs(a.fs),
		cleanup.WithWorkers(a.cfg.Settings.Workers),
	)
}

// writeJSON prints v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// interactive reports whether both stdin and stdout are terminals.
func interactive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
