package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	sqlx "github.com/jmoiron/sqlx"
	bridge "github.com/next-exp/simbridge_go/pkg"
)

var dbConn *sqlx.DB
var configuration bridge.Configuration

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return
	}
	bridge.SetConfiguration(configuration)
	bridge.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	// Without a database the bridge runs with an empty detector description:
	// valid for protocol testing, every event comes back with zero hits.
	channels := &bridge.ChannelMap{Positions: make(map[uint32]bridge.ChannelPosition)}
	if !configuration.NoDB {
		dbConn, err = bridge.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
		if err != nil {
			message := fmt.Errorf("Error connecting to database: %w", err)
			logger.Error(message.Error())
			return
		}
		defer dbConn.Close()

		channels, err = bridge.LoadChannelMap(dbConn, configuration.RunNumber)
		if err != nil {
			return
		}
		message := fmt.Sprintf("Detector description loaded: %d channels", channels.NumChannels())
		logger.Info(message, "main")
	}

	engine := bridge.NewLineEngine(channels, configuration.CaptureRadius)

	var writer *bridge.Writer
	if configuration.WriteData {
		writer = bridge.NewWriter(configuration.FileOut)
		defer writer.Close()
		if channels.NumChannels() > 0 {
			writer.WriteChannelMap(channels)
		}
	}

	server := bridge.NewServer(engine)
	server.Channels = channels
	server.Archive = writer
	defer server.Close()

	if err := server.Listen(configuration.Endpoint); err != nil {
		logger.Error(err.Error())
		return
	}
	logger.Info(fmt.Sprintf("Serving simulation requests on %s", configuration.Endpoint), "main")

	if err := server.Serve(); err != nil {
		logger.Error(err.Error())
	}
}
