package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/enki/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long:  `Manage configuration settings for enki.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init [DATABASE_URL]",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with database connection settings.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var databaseURL string
		if len(args) > 0 {
			databaseURL = args[0]
		}

		if err := config.InitConfig(databaseURL); err != nil {
			return err
		}

		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		fmt.Printf("Created configuration file: %s\n", configPath)
		fmt.Println("Please edit database_url and the metadata settings in this file.")

		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the configuration file path and the effective settings, with secrets masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration file: %s\n\n", configPath)

		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		fmt.Printf("DATABASE_URL:    %s\n", redactURL(cfg.DatabaseURL))
		fmt.Printf("DB_POOL:         max=%d min=%d lifetime=%s idle=%s\n",
			cfg.DBPool.MaxConns, cfg.DBPool.MinConns, cfg.DBPool.MaxConnLifetime, cfg.DBPool.MaxConnIdleTime)
		fmt.Printf("HTTP_ADDR:       %s\n", cfg.HTTPAddr)
		fmt.Printf("LOG_LEVEL:       %s\n", cfg.LogLevel)
		fmt.Printf("METADATA_SOURCE: %s\n", cfg.MetadataSource)
		fmt.Printf("YOUTUBE_API_KEY: %s\n", mask(cfg.YouTubeAPIKey))
		fmt.Printf("S3_BUCKET:       %s\n", cfg.S3Bucket)
		fmt.Printf("AWS_REGION:      %s\n", cfg.AWSRegion)
		fmt.Printf("REDIS_URL:       %s\n", redactURL(cfg.RedisURL))
		fmt.Printf("NATS_URL:        %s\n", redactURL(cfg.NATSURL))

		return nil
	},
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
