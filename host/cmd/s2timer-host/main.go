// s2timer-host monitors the stats stream emitted by firmware built on the
// s2timer library and reports the achieved interrupt rate per channel.
package main

import (
	"flag"
	"io"
	"math"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"s2timer/core"
	"s2timer/host/logs"
	"s2timer/host/monitor"
	"s2timer/host/serial"
)

var (
	device    = flag.String("device", "/dev/ttyUSB0", "Serial device path")
	baud      = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	verbose   = flag.Bool("verbose", false, "Enable debug output")
	tolerance = flag.Float64("tolerance", 5.0, "Warn when the achieved rate deviates by more than this percentage")
)

func main() {
	flag.Parse()

	logger := logs.NewLogger("s2timer-host")
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}
	logger.Infof("%s monitor", core.Version)

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	port, err := serial.Open(cfg)
	if err != nil {
		logger.Errorf("open %s: %v", *device, err)
		os.Exit(1)
	}
	defer port.Close()
	logger.Infof("listening on %s @ %d baud", *device, *baud)

	run(logger, port)
}

func run(logger *log.Logger, port io.Reader) {
	mon := monitor.New()
	buf := make([]byte, 256)
	lastDropped := 0

	for {
		n, err := port.Read(buf)
		if err != nil && err != io.EOF {
			logger.Errorf("serial read: %v", err)
			return
		}
		if n == 0 {
			// Read timeout; keep polling
			continue
		}

		for _, u := range mon.Feed(buf[:n], time.Now()) {
			logUpdate(logger, u)
		}
		if d := mon.Dropped(); d != lastDropped {
			logger.Warnf("dropped %d corrupt frame(s)", d-lastDropped)
			lastDropped = d
		}
	}
}

func logUpdate(logger *log.Logger, u monitor.Update) {
	entry := logger.WithFields(log.Fields{
		"channel": u.Channel,
		"fires":   u.Fires,
		"alarm":   u.AlarmTicks,
	})
	if !u.Measured {
		entry.Debug("no rate yet")
		return
	}

	nominal := monitor.ExpectedRate(u.AlarmTicks)
	deviation := 0.0
	if nominal > 0 {
		deviation = math.Abs(u.RateHz-nominal) / nominal * 100
	}
	if deviation > *tolerance {
		entry.Warnf("rate %.1fHz deviates %.1f%% from nominal %.1fHz", u.RateHz, deviation, nominal)
		return
	}
	entry.Infof("rate %.1fHz (nominal %.1fHz)", u.RateHz, nominal)
}
