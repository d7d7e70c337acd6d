// Package config provides configuration parsing for plop.
//
// The configuration is stored in plop.json, or plop.yaml, at the project
// root. This package handles loading, saving, and validating it.
//
// # Configuration File Structure
//
//	{
//	  "mount": {
//	    "selector": "#app",
//	    "offset": 0,
//	    "remoteEvents": false
//	  },
//	  "frame": {
//	    "interval": "16ms"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "plop",
//	    "addr": "localhost:9090"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "tracerName": "plop"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	logger := cfg.Logger(os.Stderr)
package config
