package blobstore

// Config selects and configures the storage backend. Driver "local" needs
// only LocalDir; driver "s3" needs the bucket and region at minimum.
type Config struct {
	Driver         string `env:"STORAGE_DRIVER" envDefault:"local"`
	LocalDir       string `env:"STORAGE_LOCAL_DIR" envDefault:"./tmp/vault"`
	Bucket         string `env:"STORAGE_S3_BUCKET"`
	Region         string `env:"STORAGE_S3_REGION"`
	AccessKeyID    string `env:"STORAGE_S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"STORAGE_S3_SECRET_KEY"`
	Endpoint       string `env:"STORAGE_S3_ENDPOINT"`         // S3-compatible services.
	ForcePathStyle bool   `env:"STORAGE_S3_FORCE_PATH_STYLE"` // Required for MinIO.
}
