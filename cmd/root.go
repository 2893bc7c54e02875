package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/jobapply/internal/ai"
	"github.com/spigell/jobapply/internal/ai/ollama"
	"github.com/spigell/jobapply/internal/kv"
	"github.com/spigell/jobapply/internal/server"
)

const (
	app       = "jobapply"
	envPrefix = "JOBAPPLY"
)

type Config struct {
	Storage kv.Config     `mapstructure:"storage"`
	Profile ProfileConfig `mapstructure:"profile"`
	AI      AIConfig      `mapstructure:"ai"`
	Server  server.Config `mapstructure:"server"`
}

type ProfileConfig struct {
	File       string `mapstructure:"file"`
	ResumeFile string `mapstructure:"resume-file"`
}

type AIConfig struct {
	Provider     string       `mapstructure:"provider"`
	MaxRetries   int          `mapstructure:"max-retries"`
	MaxLogLength int          `mapstructure:"max-log-length"`
	Ollama       OllamaConfig `mapstructure:"ollama"`
	Gemini       GeminiConfig `mapstructure:"gemini"`
}

type OllamaConfig struct {
	URL            string        `mapstructure:"url"`
	Model          string        `mapstructure:"model"`
	ReasoningModel string        `mapstructure:"reasoning-model"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "jobapply answers job application questions from your profile, past answers and a local model",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobapply.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("storage.driver", "sqlite")
	viper.SetDefault("storage.path", "jobapply.db")
	viper.SetDefault("storage.redis-url", "")
	viper.SetDefault("storage.prefix", "")

	viper.SetDefault("profile.file", "")
	viper.SetDefault("profile.resume-file", "")

	viper.SetDefault("ai.provider", "ollama")
	viper.SetDefault("ai.max-retries", 0)
	viper.SetDefault("ai.max-log-length", 100)
	viper.SetDefault("ai.ollama.url", ollama.DefaultURL)
	viper.SetDefault("ai.ollama.model", ai.DefaultModel)
	viper.SetDefault("ai.ollama.reasoning-model", ai.DefaultReasoningModel)
	viper.SetDefault("ai.ollama.timeout", "0s")
	viper.SetDefault("ai.gemini.api-key", "")
	viper.SetDefault("ai.gemini.api-key-file", "")
	viper.SetDefault("ai.gemini.model", "")

	viper.SetDefault("server.addr", server.DefaultAddr)
	viper.SetDefault("server.allowed-origins", []string{"chrome-extension://*", "moz-extension://*"})
}

func initConfig() {
	// a missing .env is normal
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Defaults are enough to run; only an explicit or broken file is fatal.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
