package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/itohio/nixietherm/pkg/color"
	"github.com/itohio/nixietherm/pkg/dac"
	"github.com/itohio/nixietherm/pkg/record"
	"github.com/itohio/nixietherm/pkg/store"
)

// errVolatile is returned by commands that write when the schema version is
// Volatile.
var errVolatile = errors.New("schema version 0 never persists")

// showReport is the YAML rendering of the stored record.
type showReport struct {
	Path   string        `yaml:"path"`
	Valid  bool          `yaml:"valid"`
	Record record.Record `yaml:"record"`
}

func newShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored record as YAML",
		Long: `Decodes the record from the image without writing. valid is true when the
stored schema version matches the configured one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			image, st, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer image.Close()

			rec, valid, err := st.Peek()
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(showReport{Path: c.cfg.Store.Path, Valid: valid, Record: rec})
		},
	}
}

func newDumpCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "List the raw image bytes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			image, _, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer image.Close()

			return store.Dump(cmd.OutOrStdout(), image, c.cfg.Store.Size)
		},
	}
}

func newClearCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Erase the image so the next boot loads defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			image, _, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer image.Close()

			if err := store.Clear(image, c.cfg.Store.Size); err != nil {
				return err
			}
			c.log.Info("cleared store", zap.String("path", c.cfg.Store.Path), zap.Int("bytes", c.cfg.Store.Size))
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d bytes\n", c.cfg.Store.Size)
			return nil
		},
	}
}

func newInitCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the factory record of the configured unit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			image, st, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer image.Close()

			rec := st.Defaults()
			return save(c, cmd, st, &rec)
		},
	}
}

func newSetCalCmd(c *cli) *cobra.Command {
	var low, high float32

	cmd := &cobra.Command{
		Use:   "set-cal",
		Short: "Store calibration points and mark the unit calibrated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("low") && !cmd.Flags().Changed("high") {
				return errors.New("at least one of --low and --high is required")
			}

			image, st, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer image.Close()

			rec, err := load(st)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("low") {
				rec.CalLow = dac.Clamp(low)
			}
			if cmd.Flags().Changed("high") {
				rec.CalHigh = dac.Clamp(high)
			}
			rec.CalibrationComplete = true
			return save(c, cmd, st, &rec)
		},
	}

	cmd.Flags().Float32Var(&low, "low", 0, "Output level at the low reference temperature")
	cmd.Flags().Float32Var(&high, "high", 0, "Output level at the high reference temperature")
	return cmd
}

func newSetHueCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "set-hue <0-4095>",
		Short: "Store the backlight hue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 16)
			if err != nil || v > color.MaxHue {
				return fmt.Errorf("invalid hue %q: want 0-%d", args[0], color.MaxHue)
			}

			image, st, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer image.Close()

			rec, err := load(st)
			if err != nil {
				return err
			}
			rec.DisplayHue = uint16(v)
			return save(c, cmd, st, &rec)
		},
	}
}

// load returns the stored record, or the defaults when it is not valid.
// Unlike Store.Load it never writes.
func load(st *store.Store) (record.Record, error) {
	rec, valid, err := st.Peek()
	if err != nil {
		return record.Record{}, err
	}
	if !valid {
		return st.Defaults(), nil
	}
	return rec, nil
}

func save(c *cli, cmd *cobra.Command, st *store.Store, rec *record.Record) error {
	ok, err := st.Save(rec)
	if err != nil {
		return err
	}
	if !ok {
		return errVolatile
	}

	c.log.Info("saved record",
		zap.String("path", c.cfg.Store.Path),
		zap.String("unit", rec.UnitID),
		zap.Float32("cal_low", rec.CalLow),
		zap.Float32("cal_high", rec.CalHigh),
		zap.Uint16("display_hue", rec.DisplayHue),
	)
	rec.Print(cmd.OutOrStdout())
	return nil
}
