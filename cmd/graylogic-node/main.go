// Gray Logic Node - board control surface
//
// This is the main entry point for a Gray Logic Node: a single board with an
// LED, a relay, a button and an analog sensor, driven over a small HTTP API
// and an embedded control panel.
//
// Boot order:
//  1. Load configuration and logging
//  2. Open the board and drive both outputs off
//  3. Join the network, retrying until an address is assigned
//  4. Start the node loop, telemetry and the HTTP server
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/nerrad567/gray-logic-node/migrations"

	"github.com/nerrad567/gray-logic-node/internal/api"
	"github.com/nerrad567/gray-logic-node/internal/device"
	"github.com/nerrad567/gray-logic-node/internal/dispatch"
	"github.com/nerrad567/gray-logic-node/internal/hal"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-node/internal/journal"
	"github.com/nerrad567/gray-logic-node/internal/network"
	"github.com/nerrad567/gray-logic-node/internal/node"
	"github.com/nerrad567/gray-logic-node/internal/panel"
	"github.com/nerrad567/gray-logic-node/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear boot sequence
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic Node",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	defer log.Close() //nolint:errcheck // nothing left to report to
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
		"output", cfg.Logging.Output,
	)

	// Board first, so the outputs are driven off before anything else runs.
	board, err := hal.Open(cfg.Board, log)
	if err != nil {
		return fmt.Errorf("opening board: %w", err)
	}
	defer func() {
		if closeErr := board.Close(); closeErr != nil {
			log.Error("error closing board", "error", closeErr)
		}
	}()
	state := device.NewState(board, cfg.Board.ADC.MaxValue)
	log.Info("board ready", "driver", cfg.Board.Driver)

	// Blocks until the interface has an address. Only shutdown ends the wait.
	addr, err := network.NewAssociator(cfg.Network, log).Run(ctx)
	if err != nil {
		return fmt.Errorf("joining network: %w", err)
	}

	identity := network.NewIdentity(cfg.Node.Name, network.NodeID(cfg.Node.ID, addr), addr,
		network.NewProber(addr.Interface))
	log = log.With("node_id", identity.ID())

	scale := device.Scale{
		MaxValue:       cfg.Board.ADC.MaxValue,
		ReferenceVolts: cfg.Board.ADC.ReferenceVolts,
	}
	dispatcher := dispatch.New(&dispatch.Env{
		State: state,
		Scale: scale,
		Info:  identity,
		Panel: panel.Index(cfg.API.PanelDir),
	})
	loop := node.New(dispatcher, device.NewSampler(board, state), state, scale, node.Options{
		SampleInterval:  cfg.GetSampleInterval(),
		PublishInterval: cfg.GetPublishInterval(),
		EventBuffer:     cfg.Loop.EventBuffer,
	}, log)

	hub := api.NewHub(cfg.WebSocket, log)
	sinks := []telemetry.Sink{telemetry.NewHubSink(hub)}
	checks := make(map[string]api.HealthChecker)

	// Journal (optional)
	var events api.EventReader
	if cfg.Database.Enabled {
		db, dbErr := openJournal(ctx, cfg, log)
		if dbErr != nil {
			return dbErr
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		checks["database"] = db
		j := journal.New(db.DB)
		events = j
		sinks = append(sinks, telemetry.NewJournalSink(j))
	} else {
		log.Info("journal disabled")
	}

	// MQTT (optional). A broker outage must not keep the panel offline.
	topics := mqtt.Topics{NodeID: identity.ID()}
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT, topics)
		if err != nil {
			log.Warn("MQTT unavailable, continuing without it", "error", err)
		} else {
			defer func() {
				log.Info("disconnecting from MQTT")
				if closeErr := mqttClient.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			}()
			checks["mqtt"] = mqttClient
			mqttClient.SetLogger(log)
			mqttClient.SetOnConnect(func() {
				log.Info("MQTT connected")
			})
			mqttClient.SetOnDisconnect(func(err error) {
				log.Warn("MQTT disconnected", "error", err)
			})
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"state_topic", topics.State(),
			)

			qos := byte(cfg.MQTT.QoS) //nolint:gosec // validated to 0..2
			sinks = append(sinks, telemetry.NewMQTTSink(mqttClient, topics, qos))
			listener := telemetry.NewCommandListener(mqttClient, loop, topics, qos, log)
			if startErr := listener.Start(); startErr != nil {
				log.Warn("MQTT commands unavailable", "error", startErr)
			} else {
				defer func() {
					if stopErr := listener.Stop(); stopErr != nil {
						log.Debug("stopping MQTT commands", "error", stopErr)
					}
				}()
			}
		}
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			log.Warn("InfluxDB unavailable, continuing without it", "error", influxErr)
		} else {
			defer func() {
				log.Info("closing InfluxDB connection")
				if closeErr := influxClient.Close(); closeErr != nil {
					log.Error("error closing InfluxDB", "error", closeErr)
				}
			}()
			influxClient.SetOnError(func(err error) {
				log.Error("InfluxDB write error", "error", err)
			})
			checks["influxdb"] = influxClient
			sinks = append(sinks, telemetry.NewInfluxSink(influxClient, identity.ID()))
			log.Info("InfluxDB connected",
				"url", cfg.InfluxDB.URL,
				"org", cfg.InfluxDB.Org,
				"bucket", cfg.InfluxDB.Bucket,
			)
		}
	} else {
		log.Info("InfluxDB disabled")
	}

	go hub.Run(ctx)
	go telemetry.NewFanout(loop.Events(), log, sinks...).Run(ctx)

	loopDone := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(loopDone)
	}()

	server, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log,
		Loop:    loop,
		Routes:  dispatcher.Routes(),
		Journal: events,
		Hub:     hub,
		Checks:  checks,
		NodeID:  identity.ID(),
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("serving control panel", "url", panelURL(identity.Address().IP, cfg.API.Port))

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	<-loopDone

	log.Info("Gray Logic Node stopped", "dropped_events", loop.Dropped())
	return nil
}

// openJournal opens and migrates the database and prunes old journal rows.
func openJournal(ctx context.Context, cfg *config.Config, log *logging.Logger) (*database.DB, error) {
	db, err := database.Open(database.ConfigFrom(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	schema, err := db.SchemaVersion(ctx)
	if err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("reading schema version: %w", err)
	}
	log.Info("database connected", "path", cfg.Database.Path, "schema", schema)

	if cfg.Journal.RetentionHours > 0 {
		retention := time.Duration(cfg.Journal.RetentionHours) * time.Hour
		pruned, err := journal.New(db.DB).Prune(ctx, retention)
		if err != nil {
			log.Warn("journal prune failed", "error", err)
		} else if pruned > 0 {
			log.Info("journal pruned", "rows", pruned, "retention", retention)
		}
	}
	return db, nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_NODE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_NODE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// panelURL is the address a browser should open.
func panelURL(ip net.IP, port int) string {
	host := "0.0.0.0"
	if ip != nil {
		host = ip.String()
	}
	if port != 80 {
		host = net.JoinHostPort(host, strconv.Itoa(port))
	}
	return "http://" + host + "/"
}
