package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"

	"github.com/buckleypaul/catbot/internal/cli"
	"github.com/buckleypaul/catbot/internal/serial"
	"github.com/buckleypaul/catbot/internal/store"
	"github.com/buckleypaul/catbot/internal/ui"
)

func portsCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:    "ports",
		Summary: "List serial ports",
		Run: func(args []string) error {
			ports, err := serial.ListPorts()
			if err != nil {
				return a.fail(fmt.Errorf("list serial ports: %w", err))
			}
			if len(ports) == 0 {
				fmt.Fprintln(a.stdout, ui.DimStyle.Render("no serial ports found"))
				return nil
			}

			rows := make([][]string, 0, len(ports))
			for _, p := range ports {
				rows = append(rows, []string{p.Name, p.USBID(), p.SerialNumber, p.Product})
			}
			fmt.Fprintln(a.stdout, ui.Table([]string{"Port", "USB ID", "Serial", "Product"}, rows))
			return nil
		},
	}
}

func monitorCommand(a *app) *cli.Command {
	var port string
	var baud int
	return &cli.Command{
		Name:    "monitor",
		Aliases: []string{"m"},
		Summary: "Print data received from the board's serial port",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("monitor", pflag.ContinueOnError)
			fs.StringVarP(&port, "port", "p", "", "serial port (defaults to the saved board port)")
			fs.IntVarP(&baud, "baud", "b", a.cfg.SerialBaudRate, "baud rate")
			return fs
		},
		Run: func(args []string) error {
			if port == "" {
				board, err := a.boardFile().ReadBoard()
				if err != nil {
					return a.fail(err)
				}
				port = board.Port
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return a.monitor(ctx, serial.NewMonitor(), port, baud)
		},
	}
}

// monitor copies data from the port to stdout until ctx is cancelled or the
// port goes away.
func (a *app) monitor(ctx context.Context, m *serial.Monitor, port string, baud int) error {
	if err := m.Connect(port, baud); err != nil {
		return a.fail(fmt.Errorf("open %s: %w", port, err))
	}
	fmt.Fprintln(a.stderr, ui.DimStyle.Render("connected to ")+ui.AccentStyle.Render(port)+
		ui.DimStyle.Render(fmt.Sprintf(" at %d baud (Ctrl-C to quit)", baud)))

	start := a.now()
	received, readErr := copySerial(ctx, a.stdout, m)

	record := store.SerialLog{
		Port:      port,
		BaudRate:  baud,
		Timestamp: start,
		Bytes:     received,
		Duration:  a.now().Sub(start).Round(time.Second).String(),
	}
	if err := a.store.AddSerialLog(record); err != nil {
		a.logger.Warn("failed to record serial session", "error", err)
	}

	if readErr != nil {
		return a.fail(fmt.Errorf("%s: %w", port, readErr))
	}
	return nil
}

// serialSource is the part of serial.Monitor the copy loop reads from.
type serialSource interface {
	DataChan() <-chan []byte
	Stopped() <-chan struct{}
	Err() error
	Disconnect()
}

// copySerial writes received chunks to w until ctx is cancelled or the read
// loop stops. Chunks already queued when the port fails are still written.
func copySerial(ctx context.Context, w io.Writer, src serialSource) (int64, error) {
	var received int64
	write := func(data []byte) {
		n, _ := w.Write(data)
		received += int64(n)
	}

	data, stopped := src.DataChan(), src.Stopped()
	for {
		select {
		case chunk := <-data:
			write(chunk)
		case <-stopped:
			for {
				select {
				case chunk := <-data:
					write(chunk)
				default:
					return received, src.Err()
				}
			}
		case <-ctx.Done():
			src.Disconnect()
			return received, nil
		}
	}
}
