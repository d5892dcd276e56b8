// Command simulate stands in for an ESP32 PIR node. It publishes the payload
// shapes the relay understands (bare sentinels, category-temperature pairs and
// JSON records) to an MQTT topic at a fixed interval.
//
// Usage:
//
//	go run ./cmd/simulate \
//	  -broker ws://broker.hivemq.com:8000/mqtt \
//	  -topic home/esp32s3/pir/mouvement \
//	  -interval 2s -count 20
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/couchcryptid/meteo-relay/internal/domain"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

func main() {
	broker := flag.String("broker", "ws://broker.hivemq.com:8000/mqtt", "MQTT broker URL")
	topic := flag.String("topic", "home/esp32s3/pir/mouvement", "topic to publish to")
	qos := flag.Int("qos", 0, "MQTT QoS (0, 1 or 2)")
	interval := flag.Duration("interval", 2*time.Second, "delay between payloads")
	count := flag.Int("count", 0, "number of payloads to send (0 = until interrupted)")
	seed := flag.Uint64("seed", 0, "random seed (0 = time based)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *qos < 0 || *qos > 2 {
		logger.Error("invalid qos", "qos", *qos)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *broker, *topic, byte(*qos), *interval, *count, *seed); err != nil {
		logger.Error("simulate failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, broker, topic string, qos byte, interval time.Duration, count int, seed uint64) error {
	opts := pahomqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("meteo-sim-" + uuid.NewString()[:8]).
		SetConnectTimeout(10 * time.Second)
	client := pahomqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect %s: %w", broker, token.Error())
	}
	defer client.Disconnect(250)
	logger.Info("connected", "broker", broker, "topic", topic)

	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	gen := newGenerator(seed)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for sent := 0; count == 0 || sent < count; sent++ {
		payload := gen.next()
		token := client.Publish(topic, qos, false, payload)
		if token.Wait() && token.Error() != nil {
			return fmt.Errorf("publish: %w", token.Error())
		}
		logger.Info("published", "payload", payload)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

// generator produces a rotating mix of payload shapes.
type generator struct {
	rng *rand.Rand
	n   int
}

func newGenerator(seed uint64) *generator {
	return &generator{rng: rand.New(rand.NewPCG(seed, seed>>1))}
}

func (g *generator) next() string {
	defer func() { g.n++ }()

	switch g.n % 3 {
	case 0:
		if g.rng.IntN(2) == 0 {
			return domain.SentinelMotion
		}
		return domain.SentinelNoMotion
	case 1:
		cats := domain.Categories()
		cat := cats[g.rng.IntN(len(cats))]
		return string(cat) + "-" + strconv.Itoa(g.temperature(cat))
	default:
		motion := g.rng.IntN(2) == 1
		cat := domain.CategorySun
		if motion {
			cat = domain.CategoryStorm
		}
		temp := float64(g.temperature(cat)) + float64(g.rng.IntN(10))/10
		return fmt.Sprintf(`{"motion":%t,"temp":%.1f}`, motion, temp)
	}
}

// temperature picks a value inside the category's range.
func (g *generator) temperature(cat domain.Category) int {
	d, _ := domain.DescriptorOf(cat)
	return d.Min + g.rng.IntN(d.Max-d.Min+1)
}
