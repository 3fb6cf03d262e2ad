// Package config loads fleetgear configuration from a single directory.
//
// # Configuration Directory
//
// The default directory is ~/.config/fleetgear; commands accept --config to
// point elsewhere. The directory contains:
//   - config.yaml (main configuration file, optional)
//   - plugins/ (one YAML file per plugin, each declaring components)
//   - the inventory file referenced by inventory.file
//
// # config.yaml
//
//	logLevel: info        # debug, info, warn, error
//	logFormat: text       # text or json
//	fanout:
//	  concurrency: 0      # nodes updated at once, 0 = unbounded
//	remote:
//	  command: ["ssh", "{{ node }}", "sudo", "chef-client", "-o", "{{ recipe }}"]
//	  concurrency: 10
//	  vars:
//	    user: deploy
//	inventory:
//	  file: inventory.yaml  # relative to the configuration directory
//
// Without remote.command recipes are not run; state changes only update
// node attributes.
//
// # Plugin Files
//
//	name: shop
//	version: 1.0.0
//	components:
//	  - name: web
//	    description: storefront
//	    groups:
//	      - name: app
//	        selector: role=web
//	    services:
//	      - name: app
//	        group: app
//	        attribute: web.app.state
//	        recipe: web::app
//	    commands:
//	      - name: bounce
//	        steps:
//	          - service: app
//	            state: restart
//
// Every problem found while loading plugin files is reported as a
// ConfigurationError; all of them are collected in a
// ConfigurationErrorCollection so a single run shows every broken file.
package config
