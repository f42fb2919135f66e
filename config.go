package torrent

import (
	"os"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/brineport/torrent/internal/dht"
	"github.com/brineport/torrent/internal/transport"
)

// TimeoutConfig overrides the per-call timeouts spec.md fixes for each
// transport operation.
type TimeoutConfig struct {
	PeerPayload   time.Duration `yaml:"peer_payload"`
	PeerIdle      time.Duration `yaml:"peer_idle"`
	DatagramRetry time.Duration `yaml:"datagram_retry"`
	DHTQuery      time.Duration `yaml:"dht_query"`
}

// DHTLookupConfig overrides the iterative get_peers lookup's bounds.
type DHTLookupConfig struct {
	MaxRounds int `yaml:"max_rounds"`
	FanOut    int `yaml:"fan_out"`
}

// Config holds the settings LoadConfig reads from YAML. Timeouts and
// lookup bounds default to the values spec.md fixes for each call site.
// Nothing in this module reads a Config: NewOrchestrator takes no
// Config, and internal/transport and internal/dht use their own
// constants, so changing these fields does not change their behaviour.
type Config struct {
	Port     uint16 `yaml:"port"`
	Database string `yaml:"database"`

	DHT struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"dht"`

	Timeouts  TimeoutConfig   `yaml:"timeouts"`
	DHTLookup DHTLookupConfig `yaml:"dht_lookup"`
}

// DefaultConfig mirrors the constants declared next to the code that
// consumes them (internal/transport, internal/dht), so a Config read
// from an empty or absent file holds exactly those packages' own
// defaults.
var DefaultConfig = Config{
	Port:     6881,
	Database: "~/.brineport/session.db",
	Timeouts: TimeoutConfig{
		PeerPayload:   transport.DefaultPayloadTimeout,
		PeerIdle:      transport.PeerReadTimeout,
		DatagramRetry: transport.DatagramAttemptTimeout,
		DHTQuery:      dht.QueryTimeout,
	},
	DHTLookup: DHTLookupConfig{
		MaxRounds: dht.MaxLookupRounds,
		FanOut:    dht.LookupFanOut,
	},
}

// LoadConfig reads filename as YAML over DefaultConfig. A missing file
// is not an error; it yields the defaults, same as rain's LoadConfig.
func LoadConfig(filename string) (*Config, error) {
	c := DefaultConfig
	b, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return &c, nil
	}
	if err != nil {
		return nil, err
	}
	if err = yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	expanded, err := homedir.Expand(c.Database)
	if err != nil {
		return nil, err
	}
	c.Database = expanded
	return &c, nil
}
