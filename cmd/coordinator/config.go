package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/agalitsyn/flagutils"
	"github.com/agalitsyn/secret"

	"github.com/bengol30/patifon-events-management-sub000/version"
)

const EnvPrefix = "COORDINATOR"

type Config struct {
	Debug bool

	Log struct {
		Level string
	}

	Mongo struct {
		URI      secret.String
		Database string
	}

	URLs struct {
		TaskBase  string
		EventBase string
	}

	// DryRun keeps everything in memory, no cluster required.
	DryRun bool
}

func (c Config) String() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stdout, err)
		os.Exit(0)
	}
	return string(b)
}

func ParseFlags() Config {
	var cfg Config

	printVersion := flag.Bool("version", false, "Show version.")
	logLevel := flag.String("log-level", "info", "Log level (debug | info | warn | error).")
	mongoURI := flag.String("mongo-uri", "", "MongoDB connection string.")
	mongoDB := flag.String("mongo-db", "coordination", "MongoDB database name.")
	taskURLBase := flag.String("task-url-base", "", "Base URL for task pages linked in notifications.")
	eventURLBase := flag.String("event-url-base", "", "Base URL for event pages linked in notifications.")
	dryRun := flag.Bool("dry-run", false, "Run with in-memory storage and disabled sending.")

	flagutils.Prefix = EnvPrefix
	flagutils.Parse()
	flag.Parse()

	cfg.Log.Level = *logLevel
	if *logLevel == "debug" {
		cfg.Debug = true
	}
	cfg.Mongo.URI = secret.NewString(*mongoURI)
	cfg.Mongo.Database = *mongoDB
	cfg.URLs.TaskBase = *taskURLBase
	cfg.URLs.EventBase = *eventURLBase
	cfg.DryRun = *dryRun

	if *printVersion {
		fmt.Fprintln(os.Stdout, version.String())
		os.Exit(0)
	}

	return cfg
}
