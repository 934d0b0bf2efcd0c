package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/remiges-tech/rigel"
	"github.com/remiges-tech/rigel/etcd"
)

// Config is a source from which application configuration can be loaded.
type Config interface {
	LoadConfig(c any) error
	Check() error
}

// Load first ensures that the config source is valid and accessible. Then it loads the config into c.
func Load(cs Config, c any) error {
	if err := cs.Check(); err != nil {
		return err
	}
	return cs.LoadConfig(c)
}

// File

type File struct {
	ConfigFilePath string
}

func (f *File) Check() error {
	if f.ConfigFilePath == "" {
		return fmt.Errorf("configFilePath cannot be empty")
	}
	return nil
}

func (f *File) LoadConfig(appConfig any) error {
	file, err := os.Open(f.ConfigFilePath)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	return decoder.Decode(appConfig)
}

// Rigel

// DefaultRigelKey is the rigel key holding the JSON encoded AppConfig.
const DefaultRigelKey = "errack.config"

// ValueGetter is the part of the rigel client used to read configuration.
type ValueGetter interface {
	Get(ctx context.Context, key string) (string, error)
}

// Rigel loads the whole application config from one rigel key.
type Rigel struct {
	Client  ValueGetter
	Key     string
	Timeout time.Duration
}

func (r *Rigel) Check() error {
	if r.Client == nil {
		return fmt.Errorf("rigel client cannot be nil")
	}
	if r.Key == "" {
		return fmt.Errorf("rigel config key cannot be empty")
	}
	return nil
}

func (r *Rigel) LoadConfig(appConfig any) error {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	value, err := r.Client.Get(ctx, r.Key)
	if err != nil {
		return fmt.Errorf("failed to read %s from rigel: %w", r.Key, err)
	}
	if err := json.Unmarshal([]byte(value), appConfig); err != nil {
		return fmt.Errorf("invalid config in rigel key %s: %w", r.Key, err)
	}
	return nil
}

// RigelParams identifies a config in rigel.
type RigelParams struct {
	EtcdEndpoints string // comma separated
	App           string
	Module        string
	Version       int
	ConfigName    string
	Key           string
}

// NewRigel creates a rigel config source backed by etcd.
func NewRigel(p RigelParams) (*Rigel, error) {
	etcdStorage, err := etcd.NewEtcdStorage(strings.Split(p.EtcdEndpoints, ","))
	if err != nil {
		return nil, fmt.Errorf("failed to create EtcdStorage: %w", err)
	}
	key := p.Key
	if key == "" {
		key = DefaultRigelKey
	}
	return &Rigel{
		Client: rigel.New(etcdStorage, p.App, p.Module, p.Version, p.ConfigName),
		Key:    key,
	}, nil
}
