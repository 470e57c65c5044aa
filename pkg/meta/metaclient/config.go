package metaclient

import "strings"

// DefaultEndpoints is used when no metastore endpoint is configured,
// matching the default client port of the embedded etcd.
const DefaultEndpoints = "127.0.0.1:12379"

// StoreConfig holds the connection parameters of a metastore.
type StoreConfig struct {
	Endpoints []string `toml:"endpoints" json:"endpoints"`
	User      string   `toml:"user" json:"user"`
	Password  string   `toml:"password" json:"password"`
}

// SetEndpoints parses a comma separated endpoint list.
func (s *StoreConfig) SetEndpoints(endpoints string) {
	if endpoints != "" {
		s.Endpoints = strings.Split(endpoints, ",")
	}
}
