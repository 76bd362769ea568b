package config

import (
	"os"
	"strings"
	"time"
	// timezone names resolve even on hosts without a zoneinfo database
	_ "time/tzdata"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

// DefaultSlots are the hour-aligned start labels of the business day.
var DefaultSlots = []string{"10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"}

type Application struct {
	Host     string   `koanf:"host"`
	Listen   string   `koanf:"listen"`
	Timezone string   `koanf:"timezone"`
	Slots    []string `koanf:"slots"`
	Refresh  Refresh  `koanf:"refresh"`
	Broker   Broker   `koanf:"broker"`
	Database Database `koanf:"db"`
}

type Refresh struct {
	// Schedule is a cron expression; empty disables the background refresh.
	Schedule string `koanf:"schedule"`
}

type Broker struct {
	Url   string `koanf:"url"`
	Queue string `koanf:"queue"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
	// Migrations is the directory holding the SQL migrations; empty searches
	// upwards from the working directory.
	Migrations string `koanf:"migrations"`
}

// Location resolves the configured timezone. Day boundaries are computed in it.
func (a Application) Location() *time.Location {
	if a.Timezone == "" || a.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		log.Warnf("unknown timezone %q, falling back to local time: %v", a.Timezone, err)
		return time.Local
	}
	return loc
}

func defaults() Application {
	return Application{
		Host:     "http://localhost:8181",
		Listen:   ":8181",
		Timezone: "Local",
		Slots:    DefaultSlots,
		Refresh: Refresh{
			Schedule: "@every 1m",
		},
		Broker: Broker{
			Url:   "",
			Queue: "reservation.events",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "desk",
			Pass:   "",
			Name:   "desk",
			Schema: "desk",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "DESK_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "DESK_")), "_", ".")
			// DESK_SLOTS=10:00,11:00
			if k == "slots" {
				return k, strings.Split(v, ",")
			}
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}
	if len(app.Slots) == 0 {
		app.Slots = DefaultSlots
	}

	return app, nil
}
