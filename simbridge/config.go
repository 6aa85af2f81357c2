package main

import (
	"encoding/json"
	"fmt"
	"os"

	bridge "github.com/next-exp/simbridge_go/pkg"
)

func LoadConfiguration(filename string) (bridge.Configuration, error) {
	var config bridge.Configuration

	// Set default values
	config.Endpoint = "tcp://*:5556"
	config.Verbosity = 0
	config.RunNumber = 0
	config.MaxSteps = 1000
	config.CaptureRadius = 50.0
	config.NoDB = false
	config.Host = "next.ific.uv.es"
	config.User = "nextreader"
	config.Passwd = "readonly"
	config.DBName = "NEXT100"
	config.WriteData = false
	config.FileOut = "hits.h5"
	config.CompressionLevel = 4

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config bridge.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("Endpoint: %s", config.Endpoint), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Max steps: %d", config.MaxSteps), "config")
	logger.Info(fmt.Sprintf("Capture radius: %f", config.CaptureRadius), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
}
