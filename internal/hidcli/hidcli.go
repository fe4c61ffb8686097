// Package hidcli wires the record, replay and decode commands.
package hidcli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bentiss/hid-tools/hiddesc"
	"github.com/bentiss/hid-tools/hidrecord"
	"github.com/bentiss/hid-tools/internal/hidraw"
	"github.com/bentiss/hid-tools/internal/recorder"
	"github.com/bentiss/hid-tools/internal/replay"
)

func Main(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd.ExecuteContext(ctx)
}

func newLogger() (*zap.Logger, error) {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000000")
	loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	// Recordings go to stdout, logs must not.
	loggerConfig.OutputPaths = []string{"stderr"}
	return loggerConfig.Build()
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hid-tools",
		Short: "Record, replay and decode HID devices",
	}
	rootCmd.AddCommand(NewListDevices())
	rootCmd.AddCommand(NewDecode())
	rootCmd.AddCommand(NewRecord())
	rootCmd.AddCommand(NewReplay())
	rootCmd.AddCommand(NewFeature())
	return rootCmd
}

func NewFeature() *cobra.Command {
	var set string
	cmd := &cobra.Command{
		Use:   "feature <device> <report-id>",
		Short: "Get or set a feature report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := hidraw.Open(args[0])
			if err != nil {
				return err
			}
			defer dev.Close()

			id, err := strconv.ParseUint(args[1], 0, 8)
			if err != nil {
				return fmt.Errorf("report id %q: %w", args[1], err)
			}
			desc, err := hiddesc.Parse(dev.Rdesc())
			if err != nil {
				return err
			}
			report, ok := desc.Report(hiddesc.ReportTypeFeature, uint8(id))
			if !ok {
				return fmt.Errorf("device has no feature report %d", id)
			}

			if set != "" {
				var data []byte
				for _, tok := range strings.Fields(set) {
					b, err := strconv.ParseUint(strings.TrimPrefix(tok, "0x"), 16, 8)
					if err != nil {
						return fmt.Errorf("hex byte %q: %w", tok, err)
					}
					data = append(data, byte(b))
				}
				return dev.SetFeature(data)
			}

			data, err := dev.GetFeature(uint8(id), report.ByteSize())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, b := range data {
				if i > 0 {
					fmt.Fprint(out, " ")
				}
				fmt.Fprintf(out, "%02x", b)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&set, "set", "", "hex bytes to send instead of reading")
	return cmd
}

func NewListDevices() *cobra.Command {
	return &cobra.Command{
		Use:   "list-devices",
		Short: "List hidraw devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := hidraw.ListDevices()
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return errors.New("no hidraw devices found")
			}
			for _, path := range paths {
				dev, err := hidraw.Open(path)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s:\t(%v)\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\t%s\n", path, dev.Name())
				dev.Close()
			}
			return nil
		},
	}
}

func NewDecode() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file-or-device>...",
		Short: "Decode report descriptors into annotated form",
		Long: `Decode report descriptors into annotated form.

Accepts recording files, raw or textual report descriptors, and
/dev/hidraw nodes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if err := decodeSource(cmd.OutOrStdout(), arg); err != nil {
					return fmt.Errorf("%s: %w", arg, err)
				}
			}
			return nil
		},
	}
}

func decodeSource(out io.Writer, arg string) error {
	if strings.HasPrefix(arg, "/dev/hidraw") {
		dev, err := hidraw.Open(arg)
		if err != nil {
			return err
		}
		defer dev.Close()
		info := dev.Info()
		_, err = hidrecord.NewWriter(out, nil).WriteDevice(&hidrecord.Device{
			Name:      dev.Name(),
			Phys:      dev.Phys(),
			Bus:       uint16(info.Bus),
			VendorID:  uint16(info.Vendor),
			ProductID: uint16(info.Product),
			Rdesc:     dev.Rdesc(),
		})
		return err
	}

	input, err := os.ReadFile(arg)
	if err != nil {
		return err
	}
	if rec, err := hidrecord.Parse(strings.NewReader(string(input))); err == nil {
		wr := hidrecord.NewWriter(out, nil)
		return wr.WriteDevices(rec.Devices)
	}
	desc, err := hidrecord.ParseDescriptor(input)
	if err != nil {
		return err
	}
	return hiddesc.NewDumper(nil).Dump(out, desc)
}

func NewRecord() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "record <device>...",
		Short: "Record events from hidraw devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if len(args) == 0 {
				return errors.New("no device given, see list-devices")
			}
			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return recorder.New(logger.Named("record"), out).Run(cmd.Context(), args)
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "file to record to (default: stdout)")
	return cmd
}

func NewReplay() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <recording>",
		Short: "Replay a recording through uhid devices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			rec, err := hidrecord.Parse(f)
			f.Close()
			if err != nil {
				return err
			}

			rep := replay.New(logger.Named("replay"), rec)
			if err := rep.Start(cmd.Context()); err != nil {
				return err
			}
			defer rep.Close()

			stdin := bufio.NewReader(cmd.InOrStdin())
			for {
				fmt.Fprintln(cmd.OutOrStdout(), "Hit enter to (re)start replaying the events")
				if _, err := stdin.ReadString('\n'); err != nil {
					return nil
				}
				if err := rep.Inject(cmd.Context()); err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
			}
		},
	}
}
