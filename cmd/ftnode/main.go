package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	fx "github.com/robotalks/ftlink/pkg/framework"
	"github.com/robotalks/ftlink/pkg/l0/comm"
	"github.com/robotalks/ftlink/pkg/l1/env"
	"github.com/robotalks/ftlink/pkg/node"
	"github.com/robotalks/ftlink/pkg/sim"
)

var (
	delay       = node.DefaultDelay
	callTimeout = node.DefaultCallTimeout
	sampleQueue = node.DefaultSampleQueue
	metricsAddr = ""
)

func init() {
	env.SetupFlags()
	sim.SetupFlags()
	flag.DurationVar(&delay, "delay", delay, "Pause after each command, 0 to disable.")
	flag.DurationVar(&callTimeout, "call-timeout", callTimeout, "Timeout of blocking sensor calls.")
	flag.IntVar(&sampleQueue, "sample-queue", sampleQueue, "Number of samples queued before dropping.")
	flag.StringVar(&metricsAddr, "metrics", metricsAddr, "Address serving Prometheus metrics, empty to disable.")
}

func main() {
	flag.Parse()

	conf := env.NewConfig()
	p, err := conf.OpenPort()
	if err != nil {
		glog.Exitf("open %s: %v", conf.SerialPort, err)
	}
	glog.Infof("serving on %s (%s)", conf.SerialPort, conf.Port)

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	ctl := sim.NewConfig().NewController()
	n := node.New(comm.NewLink(p), ctl, node.NewMetrics(reg))
	n.Delay = delay
	n.Dispatcher.CallTimeout = callTimeout
	n.Dispatcher.SampleQueue = sampleQueue

	runner := fx.NewRunner().HandleSignals()
	bootCtx, cancel := context.WithTimeout(runner.Context, callTimeout+time.Second)
	if err := n.Boot(bootCtx); err != nil {
		glog.Warningf("boot: %v", err)
	}
	cancel()

	runner.Go(fx.NamedRun("node", fx.RunFunc(func(ctx context.Context) error {
		return fx.RunWithContextCloser(ctx, p, func() error {
			return n.Run(ctx)
		})
	})))
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		runner.Go(&fx.HTTPServer{Addr: metricsAddr, Handler: mux})
	}
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}
