// Package config provides configuration parsing for urlkit projects.
//
// The configuration is stored in urlkit.json or urlkit.yaml at the project
// root. This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "codec": {
//	    "delimiter": "&",
//	    "listSeparator": ",",
//	    "allowOnlyPathname": true,
//	    "includeLocalhostDomain": true
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "port": 8080,
//	    "https": false,
//	    "certDir": ".urlkit/certs",
//	    "metrics": true,
//	    "tracing": false,
//	    "debounce": "0s",
//	    "maxHistory": 100
//	  },
//	  "storage": {
//	    "backend": "file",
//	    "dir": "data"
//	  }
//	}
//
// The same keys are accepted in YAML. URLKIT_HOST and URLKIT_PORT override
// the server address.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
