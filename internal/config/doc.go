// Package config provides configuration parsing for reconcile tools.
//
// The configuration is stored in reconcile.json (or reconcile.yaml) at
// the project root. This package handles loading, saving, and validating
// configuration, and builds the process logger from it.
//
// # Configuration File Structure
//
//	{
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  },
//	  "scheduler": {
//	    "batchDelay": "5ms"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "reconcile"
//	  },
//	  "inspector": {
//	    "addr": "localhost:7070",
//	    "tick": "1s"
//	  },
//	  "tracing": {
//	    "tracerName": "reconcile"
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
