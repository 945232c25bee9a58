package config

import (
	"sync"

	"github.com/spf13/viper"
)

var configMutex sync.Mutex

// UpdateReportSettings updates the warm list and default granularity and
// saves them back to config.yaml.
func (c *Config) UpdateReportSettings(warmList []string, defaultGranularity string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	c.Reports.WarmList = warmList
	c.Reports.DefaultGranularity = defaultGranularity

	viper.Set("reports.warm_list", warmList)
	viper.Set("reports.default_granularity", defaultGranularity)

	return viper.WriteConfig()
}
