// Package config loads carbyne configuration.
//
// The configuration is stored in carbyne.json or carbyne.yaml at the project
// root. This package handles loading, saving, environment overrides and
// validation.
//
// # Configuration File Structure
//
//	devtools:
//	  addr: localhost:7070
//	  allowedOrigins: ["http://localhost:3000"]
//	  tickInterval: 1s
//	metrics:
//	  enabled: true
//	  namespace: carbyne
//	snapshot:
//	  dir: snapshots
//	  bucket: my-bucket
//	  prefix: demo/
//	  region: eu-west-1
//	log:
//	  level: info
//	  format: text
//
// # Environment
//
// CARBYNE_ADDR, CARBYNE_LOG_LEVEL and CARBYNE_S3_BUCKET override
// devtools.addr, log.level and snapshot.bucket.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Devtools:", cfg.Devtools.Addr)
package config
