package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itohio/nixietherm/pkg/config"
	"github.com/itohio/nixietherm/pkg/logger"
	"github.com/itohio/nixietherm/pkg/store"
)

// cli carries the flags and resources shared by all commands.
type cli struct {
	configPath string
	imagePath  string
	version    int
	unit       string
	verbose    bool

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "nixiectl",
		Short:        "Inspect and edit the nixie thermometer configuration record",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "config.yaml", "Configuration file path")
	flags.StringVarP(&c.imagePath, "store", "s", "", "EEPROM image override")
	flags.IntVar(&c.version, "schema", -1, "Schema version override (0 = volatile)")
	flags.StringVar(&c.unit, "unit", "", "Unit override (SN1, SN2, SN3)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Print store diagnostics")

	root.AddCommand(
		newShowCmd(c),
		newDumpCmd(c),
		newClearCmd(c),
		newInitCmd(c),
		newSetCalCmd(c),
		newSetHueCmd(c),
	)
	return root
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if c.imagePath != "" {
		cfg.Store.Path = c.imagePath
	}
	if c.version >= 0 {
		if c.version > 255 {
			return fmt.Errorf("schema version %d out of range", c.version)
		}
		cfg.Store.SchemaVersion = uint8(c.version)
	}
	if c.unit != "" {
		cfg.Store.Unit = c.unit
	}

	c.cfg = cfg
	if c.log == nil {
		c.log = logger.New(cfg.Log)
	}
	return nil
}

// open opens the image and the record store over it. The caller closes the
// returned file.
func (c *cli) open(cmd *cobra.Command) (*store.File, *store.Store, error) {
	image, err := store.OpenFile(c.cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}

	var console io.Writer = io.Discard
	if c.verbose {
		console = cmd.ErrOrStderr()
	}

	st := store.New(image, c.cfg.Store.SchemaVersion, c.cfg.Store.Unit,
		store.WithOffset(c.cfg.Store.Offset),
		store.WithConsole(console),
	)

	c.log.Debug("opened store",
		zap.String("path", c.cfg.Store.Path),
		zap.Int64("offset", c.cfg.Store.Offset),
		zap.Uint8("schema_version", c.cfg.Store.SchemaVersion),
		zap.String("unit", c.cfg.Store.Unit),
	)
	return image, st, nil
}
