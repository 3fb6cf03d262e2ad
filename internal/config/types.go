package config

// FleetgearConfig is the top-level configuration structure for fleetgear.
type FleetgearConfig struct {
	LogLevel  string          `yaml:"logLevel,omitempty"`
	LogFormat string          `yaml:"logFormat,omitempty"`
	FanOut    FanOutConfig    `yaml:"fanout"`
	Remote    RemoteConfig    `yaml:"remote"`
	Inventory InventoryConfig `yaml:"inventory"`
}

// FanOutConfig controls attribute updates across nodes.
type FanOutConfig struct {
	Concurrency int `yaml:"concurrency,omitempty"` // 0 means unbounded
}

// RemoteConfig defines how recipes are run on nodes.
type RemoteConfig struct {
	Command     []string          `yaml:"command,omitempty"`     // argv template, empty disables recipe runs
	Concurrency int               `yaml:"concurrency,omitempty"` // nodes running a recipe at once
	Vars        map[string]string `yaml:"vars,omitempty"`        // extra template variables
}

// InventoryConfig locates the node inventory.
type InventoryConfig struct {
	File string `yaml:"file,omitempty"`
}
