package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"net/http"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	fx "github.com/robotalks/ftlink/pkg/framework"
	"github.com/robotalks/ftlink/pkg/l0/comm"
	"github.com/robotalks/ftlink/pkg/l1"
	"github.com/robotalks/ftlink/pkg/l1/comm/websocket"
	"github.com/robotalks/ftlink/pkg/l1/env"
	"github.com/robotalks/ftlink/pkg/l1/relay"
	"github.com/robotalks/ftlink/pkg/l1/sensor"
)

var (
	cutoff        uint
	period        uint = uint(relay.DefaultPeriod)
	stateInterval      = relay.DefaultStateInterval
	callTimeout        = relay.DefaultCallTimeout
	httpAddr           = ""
)

func init() {
	env.SetupFlags()
	flag.UintVar(&cutoff, "cutoff", cutoff, "Filter cutoff (Hz), 0 disables the filter.")
	flag.UintVar(&period, "period", period, "Sampling period (us).")
	flag.DurationVar(&stateInterval, "state-interval", stateInterval, "Interval publishing the state.")
	flag.DurationVar(&callTimeout, "call-timeout", callTimeout, "Timeout waiting for replies.")
	flag.StringVar(&httpAddr, "http", httpAddr, "Address serving /ws and /metrics, empty to disable.")
}

var framingErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ftlink",
	Subsystem: "bridge",
	Name:      "framing_errors_total",
	Help:      "Bytes dropped by the host link.",
}, []string{"reason"})

func main() {
	flag.Parse()

	conf := env.NewConfig()
	var pubs l1.PublisherMux
	runner := fx.NewRunner().HandleSignals()

	var meta relay.MetaUpdater
	if conf.MQTTBrokerURL != "" {
		pub, err := conf.NewPublisher()
		if err != nil {
			glog.Exit(err)
		}
		pubs.Add(pub)
		meta = pub
		runner.Go(pub)
	}
	if httpAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(framingErrors, prometheus.NewGoCollector())
		streamer := websocket.NewStreamer(conf.Info.Ref.Name())
		pubs.Add(streamer)
		mux := http.NewServeMux()
		mux.Handle("/ws", streamer.Handler())
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		runner.Go(&fx.HTTPServer{Addr: httpAddr, Handler: mux})
	}

	p, err := conf.OpenPort()
	if err != nil {
		glog.Exitf("open %s: %v", conf.SerialPort, err)
	}
	link := comm.NewLink(p)
	link.Notifier = comm.FramingErrorFunc(func(ctx context.Context, fe *comm.FramingError) {
		framingErrors.WithLabelValues(fe.Reason.Error()).Inc()
		glog.V(2).Info(fe)
	})
	client := comm.NewClient(link)
	client.Expiration = callTimeout
	s := sensor.New(client)

	r := relay.New(s, &pubs)
	r.Meta = meta
	r.Cutoff, r.Period = uint16(cutoff), uint32(period)
	r.StateInterval, r.CallTimeout = stateInterval, callTimeout
	runner.Go(r)

	// the sensor outlives the relay so sampling can be stopped on exit.
	sensorCtx, stopSensor := context.WithCancel(context.Background())
	sensorDone := make(chan error, 1)
	go func() {
		err := fx.RunWithContextCloser(sensorCtx, p, func() error {
			return s.Run(sensorCtx)
		})
		if sensorCtx.Err() == nil {
			glog.Errorf("sensor stopped: %v", err)
			runner.Cancel()
		}
		sensorDone <- err
	}()

	err = runner.Wait()
	stopSensor()
	<-sensorDone
	if err != nil {
		glog.Exit(err)
	}
}
