package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/robotalks/ftlink/pkg/l1/comm/mqtt"
	"github.com/robotalks/ftlink/pkg/l1/msgs"
)

var (
	mqttURL  = "mqtt://localhost:1883/ftlink/"
	discover bool
)

func init() {
	if val := os.Getenv("FT_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.BoolVar(&discover, "discover", discover, "List nodes and exit.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if discover {
		nodes, err := mqtt.Discover(ctx, mqttURL, mqtt.DefaultDiscoverTimeout)
		if err != nil {
			log.Fatalln(err)
		}
		for _, info := range nodes {
			log.Printf("%s: %s (port %s)", info.Ref.Name(), info.Meta.Description, info.Meta.Port)
		}
		return
	}

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err := q.Connect(ctx); err != nil {
		log.Fatalln(err)
	}
	defer q.Close()

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		_, kind, ok := mqtt.ParseNodeTopic(topic)
		if ok && kind == mqtt.TopicMeta {
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		msg, err := msgs.Decode(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		encoded, err := msgs.EncodeJSON(msg)
		if err != nil {
			log.Printf("%s: [%s] %v", topic, msg.Kind(), err)
			return
		}
		log.Printf("%s: [%s] %s", topic, msg.Kind(), encoded)
	}))
	<-ctx.Done()
}
