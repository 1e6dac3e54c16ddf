// Package cli provides the saiokit command-line interface.
//
// # Overview
//
// This package implements the `saiokit` CLI tool for working with
// saio.config files and the deployments they describe: validating config,
// inspecting the feature set, running the auth handshake and serving a
// mock deployment.
//
// # Commands
//
// validate: Check a config file and print its effective settings
//
//	saiokit validate --config saio.config
//
// features: Show the enabled feature set
//
//	saiokit features --config saio.config
//
// When enabled_features is __ASK__ the command authenticates and resolves
// the set against the deployment's /info document.
//
// auth: Run the auth handshake
//
//	saiokit auth --config saio.config
//
// plan: Export the run plan as YAML
//
//	saiokit plan --config saio.config --out plan.yaml
//
// mock: Serve an in-process mock deployment
//
//	saiokit mock --listen 127.0.0.1:8080 --expirer-interval 60s
//
// # Configuration
//
// Every command reads a saio.config file; SAIO_* environment variables
// override individual settings. See pkg/config for the full list.
package cli
