package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/heliodrome/orrery"
)

// This binary only reads the configuration and drives the simulation headless,
// logging display positions. The rendering and UI layers live elsewhere.

const dateFormat = "2006-01-02 15:04:05"

var (
	confPath   string
	duration   time.Duration
	frameDelta time.Duration
	logEvery   int
	metricsOn  string
)

func init() {
	flag.StringVar(&confPath, "conf", ".", "directory containing conf.toml")
	flag.DurationVar(&duration, "duration", 10*time.Second, "wall-clock time to run for")
	flag.DurationVar(&frameDelta, "delta", 16*time.Millisecond, "wall-clock delta per frame")
	flag.IntVar(&logEvery, "log-every", 60, "log body positions every N frames")
	flag.StringVar(&metricsOn, "metrics", "", "address to serve Prometheus metrics on (empty disables)")
}

func main() {
	flag.Parse()
	cfg, err := orrery.LoadSettings(confPath)
	if err != nil {
		log.Fatalf("configuration: %s", err)
	}

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	sim, err := orrery.New(cfg, logger)
	if err != nil {
		log.Fatalf("startup: %s", err)
	}

	if metricsOn != "" {
		go func() {
			http.Handle("/metrics", orrery.MetricsHandler())
			if err := http.ListenAndServe(metricsOn, nil); err != nil {
				logger.Log("msg", "metrics server stopped", "err", err)
			}
		}()
	}

	sim.Origin().Enable()

	frames := int(duration / frameDelta)
	for f := 0; f < frames; f++ {
		sim.Frame(frameDelta)
		if logEvery > 0 && f%logEvery == 0 {
			date := sim.Clock.Now()
			logger.Log("msg", "frame", "n", f, "date", date.Format(dateFormat))
			for _, b := range sim.Bodies {
				tf := sim.Placement().Transform(b.Name)
				logger.Log("body", b.Name, "x", tf.Position[0], "y", tf.Position[1], "z", tf.Position[2])
			}
		}
	}
}
