// Package config loads and validates the saio.config document that drives
// the harness.
//
// # Overview
//
// A saio.config file is an INI document with three sections:
//
//	[user_auth_config]
//	endpoint=http://127.0.0.1:8080/
//	strategy=saio_tempauth
//
//	[user]
//	username=test:tester
//	password=testing
//
//	[objectstorage_api]
//	enabled_features=__ALL__
//	tempurl_key_cache_time=0
//	#object_expirer_run_interval=60
//
// Keys must be unique within a section. enabled_features accepts the
// sentinels __ALL__, __NONE__ and __ASK__ or a comma-separated feature list;
// parsing of that value lives in pkg/features.
//
// # Loading
//
//	cfg, err := config.Load("saio.config")
//
// Load applies SAIO_* environment overrides (SAIO_AUTH_ENDPOINT,
// SAIO_USERNAME, SAIO_PASSWORD, SAIO_ENABLED_FEATURES, ...) after parsing
// and before validation, so CI can redirect a checked-in config at a
// different deployment without editing the file.
//
// # Watching
//
// Watch delivers reloaded revisions of the file for long-running harness
// processes:
//
//	go config.Watch(ctx, "saio.config", log, func(cfg *config.Config) { ... })
//
// # Run plans
//
// WritePlan exports the resolved settings as YAML for CI consumption,
// omitting the password.
package config
