package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Env              string `mapstructure:"env"`
	Port             int    `mapstructure:"port"`
	JWTSecret        string `mapstructure:"jwt_secret"`
	MaxMessageLength int    `mapstructure:"max_message_length"`
}

type MongoConfig struct {
	URI                     string `mapstructure:"uri"`
	Database                string `mapstructure:"database"`
	MessagesCollection      string `mapstructure:"messages_collection"`
	ConversationsCollection string `mapstructure:"conversations_collection"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers          []string `mapstructure:"brokers"`
	TopicMessageSent string   `mapstructure:"topic_message_sent"`
}

type Config struct {
	App   AppConfig   `mapstructure:"app"`
	Mongo MongoConfig `mapstructure:"mongodb"`
	Redis RedisConfig `mapstructure:"redis"`
	Kafka KafkaConfig `mapstructure:"kafka"`
	// derived values
	RequestTimeout time.Duration
}

// Load reads configuration from the given yaml file (optional) with
// environment variable overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8084)
	v.SetDefault("app.max_message_length", 2000)
	v.SetDefault("mongodb.database", "chatdb")
	v.SetDefault("mongodb.messages_collection", "messages")
	v.SetDefault("mongodb.conversations_collection", "conversations")
	v.SetDefault("kafka.topic_message_sent", "message.sent")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	c.RequestTimeout = 10 * time.Second
	return &c, nil
}
