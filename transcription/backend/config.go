package backend

import (
	"time"

	"github.com/kbukum/scribe/security"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/util"
)

// LocalConfig selects the on-device model.
type LocalConfig struct {
	ModelPath string
	Binary    string
	Timeout   time.Duration
}

// CloudConfig describes the remote API. In a Configuration, non-zero fields
// override the factory default for that call only.
type CloudConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
	TLS      security.TLSConfig
}

// merge returns c with every non-zero field of o applied on top.
func (c CloudConfig) merge(o CloudConfig) CloudConfig {
	return CloudConfig{
		Endpoint: util.Coalesce(o.Endpoint, c.Endpoint),
		APIKey:   util.Coalesce(o.APIKey, c.APIKey),
		Model:    util.Coalesce(o.Model, c.Model),
		Timeout:  util.Coalesce(o.Timeout, c.Timeout),
		TLS:      util.Coalesce(o.TLS, c.TLS),
	}
}

// Configuration is everything needed to build one backend.
type Configuration struct {
	Backend transcription.BackendType
	Local   LocalConfig
	Cloud   CloudConfig
	// UpdateDefaults stores the merged cloud settings as the new factory
	// default.
	UpdateDefaults bool
}

// key identifies interchangeable pooled backends.
type key struct {
	backend transcription.BackendType
	local   LocalConfig
	cloud   CloudConfig
}

func (c Configuration) key() key {
	k := key{backend: c.Backend}
	switch c.Backend {
	case transcription.BackendLocal:
		k.local = c.Local
	case transcription.BackendCloud:
		k.cloud = c.Cloud
	}
	return k
}
