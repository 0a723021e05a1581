// Package config handles configuration loading for the chat service.
//
// Configuration is loaded from a YAML file with ${VAR} environment variable
// expansion, defaults applied, then validated:
//
//	server:
//	  http_addr: "localhost:8080"
//	database:
//	  path: "${AYIRA_DB_PATH}"
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//	chat:
//	  send_buffer: 64
//
// The config path comes from the AYIRA_CONFIG environment variable, falling
// back to ./server.yaml.
package config
