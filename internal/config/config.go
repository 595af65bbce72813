package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "EVENTCAL_"

type StorageType string

const (
	StorageMemory   StorageType = "memory"
	StorageFile     StorageType = "file"
	StorageSqlite   StorageType = "sqlite"
	StoragePostgres StorageType = "postgres"
)

type Application struct {
	Listen   string   `koanf:"listen"`
	Cors     Cors     `koanf:"cors"`
	Storage  Storage  `koanf:"storage"`
	Database Database `koanf:"db"`
	Calendar Calendar `koanf:"calendar"`
}

type Cors struct {
	AllowedOrigins []string `koanf:"allowedorigins"`
}

type Storage struct {
	Type StorageType `koanf:"type"`
	// Path is the JSON file for "file" storage and the database file for "sqlite".
	Path string `koanf:"path"`
	// Key is the key the event list is stored under.
	Key string `koanf:"key"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Calendar struct {
	// HorizonDays limits recurrence expansion; 0 means one year ahead.
	HorizonDays int `koanf:"horizondays"`
}

func Defaults() Application {
	return Application{
		Listen: ":8181",
		Cors: Cors{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Storage: Storage{
			Type: StorageFile,
			Path: "./data/calendar.json",
			Key:  "calendarEvents",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "eventcal",
			Pass:   "",
			Name:   "eventcal",
			Schema: "public",
		},
		Calendar: Calendar{
			HorizonDays: 0,
		},
	}
}

// Load merges, in order of precedence: EVENTCAL_* environment variables, the YAML file
// at path (optional) and the built-in defaults.
func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
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
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			if k == "cors.allowedorigins" {
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

	return app, nil
}
