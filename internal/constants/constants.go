package constants

import "time"

const (
	ServiceName = "dashboard-service"
	APIPrefix   = "/api/v1"
)

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultHTTPTimeout    = 10 * time.Second
	DefaultSummaryTimeout = 30 * time.Second
	ConnectTimeout        = 30 * time.Second
	ShutdownTimeout       = 5 * time.Second
)

const (
	CacheKeyPrefixSummary = "summary:"
	DefaultTTLSeconds     = 3600
)

const (
	DefaultMongoDBName      = "salesdash"
	DefaultSalesCollection  = "sales"
	DefaultSalesTable       = "sales"
	DefaultAlertTopic       = "alert_notifications"
	DefaultRuleChangesTopic = "alert_rule_changes"
)

const (
	DataSourceSample   = "sample"
	DataSourceFile     = "file"
	DataSourcePostgres = "postgres"
	DataSourceMongoDB  = "mongodb"
)

const (
	DefaultSummaryEndpoint = "https://generativelanguage.googleapis.com"
	DefaultSummaryModel    = "gemini-2.5-flash"
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)
