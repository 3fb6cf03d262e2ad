package config

const (
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultRemoteConcurrency = 10
	DefaultInventoryFile     = "inventory.yaml"
)

// GetDefaultConfig returns the configuration used when config.yaml is
// absent. Values missing from config.yaml keep these defaults.
func GetDefaultConfig() FleetgearConfig {
	return FleetgearConfig{
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Remote: RemoteConfig{
			Concurrency: DefaultRemoteConcurrency,
		},
		Inventory: InventoryConfig{
			File: DefaultInventoryFile,
		},
	}
}
