package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "TEMPLE_"

type Application struct {
	HTTP     HTTP     `koanf:"http"`
	API      API      `koanf:"api"`
	Portal   Portal   `koanf:"portal"`
	Site     Site     `koanf:"site"`
	Calendar Calendar `koanf:"calendar"`
	Banner   Banner   `koanf:"banner"`
	Video    Video    `koanf:"video"`
	Images   Images   `koanf:"images"`
	CSRF     CSRF     `koanf:"csrf"`
}

type HTTP struct {
	Addr string `koanf:"addr"`
}

type API struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

type Portal struct {
	URL string `koanf:"url"`
}

type Site struct {
	Name string `koanf:"name"`
	// URL is the public address of this site, used in calendar exports.
	URL string `koanf:"url"`
}

type Calendar struct {
	Timezone string `koanf:"timezone"`
	Limit    int    `koanf:"limit"`
}

type Banner struct {
	Interval time.Duration `koanf:"interval"`
	Refresh  string        `koanf:"refresh"`
}

type Video struct {
	PlaylistID string `koanf:"playlistid"`
	Relays     string `koanf:"relays"`
	Limit      int    `koanf:"limit"`
	Refresh    string `koanf:"refresh"`
}

type Images struct {
	Classify bool `koanf:"classify"`
	Workers  int  `koanf:"workers"`
}

type CSRF struct {
	Key    string `koanf:"key"`
	Secure bool   `koanf:"secure"`
}

// Location resolves the display time zone. An empty name means the server's
// local zone.
func (c Calendar) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RelayList splits the comma separated relay prefixes.
func (v Video) RelayList() []string {
	var relays []string
	for _, relay := range strings.Split(v.Relays, ",") {
		if relay = strings.TrimSpace(relay); relay != "" {
			relays = append(relays, relay)
		}
	}
	return relays
}

func defaults() Application {
	return Application{
		HTTP: HTTP{Addr: ":8080"},
		API: API{
			URL:     "http://localhost:4000",
			Timeout: 15 * time.Second,
		},
		Site: Site{
			Name: "Neon Temple",
			URL:  "http://localhost:8080",
		},
		Calendar: Calendar{Limit: 100},
		Banner: Banner{
			Interval: 6 * time.Second,
			Refresh:  "@every 5m",
		},
		Video: Video{
			Relays:  "https://corsproxy.io/?,https://api.allorigins.win/raw?url=",
			Limit:   5,
			Refresh: "@every 30m",
		},
		Images: Images{Classify: true, Workers: 2},
		CSRF:   CSRF{Secure: true},
	}
}

// Load reads defaults, then the YAML file at path, then the environment. Each
// envFile that exists is loaded into the environment first without
// overriding variables that are already set.
func Load(path string, envFiles ...string) (Application, error) {
	var k = koanf.New(".")

	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debugf("env file %s not found, skipping", envFile)
				continue
			}
			log.Errorf("error loading env file %s: %v", envFile, err)
			return Application{}, err
		}
		log.Infof("Loaded environment from file: %s", envFile)
	}

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
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
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
	if app.API.URL == "" {
		return Application{}, errors.New("api.url must be set")
	}

	return app, nil
}
