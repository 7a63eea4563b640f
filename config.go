package pantryapp

// StoreConfig selects and configures the document collection backing the pantry.
type StoreConfig struct {
	Driver     string `env:"PANTRY_STORE,default=file"`
	Collection string `env:"PANTRY_COLLECTION,default=pantry-app"`
	FilePath   string `env:"PANTRY_FILE_PATH,default=artifacts/pantry-app.json"`
	S3Bucket   string `env:"PANTRY_S3_BUCKET"`
	S3Prefix   string `env:"PANTRY_S3_PREFIX"`
	SQLitePath string `env:"PANTRY_SQLITE_PATH,default=artifacts/pantry.db"`
}

type ServerConfig struct {
	Addr         string `env:"PANTRY_HTTP_ADDR,default=:8080"`
	ActionLogDir string `env:"PANTRY_ACTION_LOG_DIR,default=./logs"`
	Debug        bool   `env:"PANTRY_DEBUG,default=false"`
	OtelEnabled  bool   `env:"PANTRY_OTEL_ENABLED,default=false"`
}

type NotifyConfig struct {
	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	SlackChannel    string `env:"SLACK_CHANNEL,default=#pantry"`
	AMQPURL         string `env:"AMQP_URL"`
	AMQPExchange    string `env:"AMQP_EXCHANGE,default=pantry.events"`
}
