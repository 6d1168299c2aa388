package config

import (
	"time"

	"github.com/zalando-stups/stups-auth-adapter/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode     bool // enable dev mode for development
	Log         logger.Log
	Webserver   Webserver
	Plugin      Plugin
	Tokens      Tokens
	Directory   Directory
	Credentials Credentials
	HTTP        HTTP
}

// Webserver implement webserver settings.
type Webserver struct {
	Port          int    `validate:"gt=0,lte=65535"` // listening port for the webserver
	ShutDownTime  int    // wait time for shutdown
	CheckAliveURI string // path answering load balancer health checks
}

// Plugin holds the static capability descriptor values.
type Plugin struct {
	DisplayName string `validate:"required"`
}

// Tokens configures the OAuth2 token issuer.
type Tokens struct {
	URL           string  `validate:"required,url"` // token endpoint without realm selector
	ServiceRealm  string  `validate:"required"`     // realm for the service identity
	EmployeeRealm string  `validate:"required"`     // realm for password grants
	Scope         string  `validate:"required"`
	RefreshRatio  float64 `validate:"gt=0,lt=1"` // share of the token lifetime to wait before refreshing

	StartupAttempts    int           `validate:"gte=1"`
	MinRefreshInterval time.Duration `validate:"gt=0"`
	MaxBackoff         time.Duration `validate:"gt=0"`
}

// Directory configures the team directory service.
// URL is checked per search, so a missing value only disables search.
type Directory struct {
	URL         string
	Teams       []string
	Concurrency int `validate:"gte=1"`
}

// Credentials points to the mounted secrets directory containing client.json.
type Credentials struct {
	Dir string
}

// HTTP holds the timeouts applied to every outbound call.
type HTTP struct {
	ConnectTimeout      time.Duration `validate:"gt=0"`
	TLSHandshakeTimeout time.Duration `validate:"gt=0"`
	ReadTimeout         time.Duration `validate:"gt=0"`
	RequestTimeout      time.Duration `validate:"gt=0"`
}
