package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Dotenv string `mapstructure:"dotenv"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Metrics struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Data struct {
		Dir               string `mapstructure:"dir"`
		Places            string `mapstructure:"places"`
		FoodPlaces        string `mapstructure:"foodPlaces"`
		Synonyms          string `mapstructure:"synonyms"`
		FoodSynonyms      string `mapstructure:"foodSynonyms"`
		CategoryTimes     string `mapstructure:"categoryTimes"`
		FoodCategoryTimes string `mapstructure:"foodCategoryTimes"`
		FoodCategories    string `mapstructure:"foodCategories"`
		EmbeddingIndex    string `mapstructure:"embeddingIndex"`
	} `mapstructure:"data"`
	Embedding struct {
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"embedding"`
	Routing struct {
		BaseURL  string        `mapstructure:"baseURL"`
		Timeout  time.Duration `mapstructure:"timeout"`
		CacheTTL time.Duration `mapstructure:"cacheTTL"`
	} `mapstructure:"routing"`
}

// DataPath resolves a data file name against the configured data directory.
func (c *Config) DataPath(name string) string {
	if name == "" {
		return ""
	}
	return filepath.Join(c.Data.Dir, name)
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
