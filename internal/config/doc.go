// Package config loads the configuration of the vtree command.
//
// The configuration lives in vtree.json or vtree.yaml. Every field is
// optional; missing fields take the defaults from [New].
//
// # Configuration File Structure
//
//	log_level: info
//	frame_budget: 16ms
//	tick_interval: 1s
//	demo:
//	  title: vtree demo
//	  items: [apples, bread, cheese]
//	inspect:
//	  enabled: true
//	  addr: 127.0.0.1:7070
//	metrics:
//	  namespace: vtree
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    errors.PrintError(err)
//	    os.Exit(1)
//	}
//	logger := cfg.Logger(os.Stderr)
package config
