package storage

const (
	// DriverLocal stores files on the local filesystem under Root.
	DriverLocal = "local"
	// DriverS3 stores files in an S3 compatible bucket.
	DriverS3 = "s3"
)

// Config holds configuration for the destination disk.
type Config struct {
	// Driver selects the disk implementation (local, s3).
	Driver string `mapstructure:"driver" default:"local"`
	// Root is the base directory for the local driver.
	Root string `mapstructure:"root" default:"./storage/public"`
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket to store assets in.
	Bucket string `mapstructure:"bucket" default:"media"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// Prefix is prepended to every object key.
	Prefix string `mapstructure:"prefix" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
