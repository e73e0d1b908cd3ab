package config

import (
	"github.com/arbiterfps/arbiter/pkg/gameserver"
)

type WebIngress struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
	// HelloRate limits how often a replica may greet the server, per
	// second, with bursts of up to HelloBurst.
	HelloRate  float64 `yaml:"helloRate"`
	HelloBurst int     `yaml:"helloBurst"`
}

type ServerIngress struct {
	Web WebIngress `yaml:"web"`
}

type RedisSettings struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Prefix namespaces every key and channel of this server.
	Prefix string `yaml:"prefix"`
}

type StoreSettings struct {
	// DBPath is the SQLite database results are written to. Empty disables
	// the store.
	DBPath  string  `yaml:"dbPath"`
	KFactor float64 `yaml:"kFactor"`
}

type ServerSettings struct {
	Description string            `yaml:"description"`
	Ingress     ServerIngress     `yaml:"ingress"`
	Redis       RedisSettings     `yaml:"redis"`
	Store       StoreSettings     `yaml:"store"`
	Game        gameserver.Config `yaml:"game"`
}

type Config struct {
	Server ServerSettings `yaml:"server"`
}
