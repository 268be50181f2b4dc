package email

// Config holds mailer settings. The Postmark tokens are optional so
// development environments can run with the file-based sender instead.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"no-reply@contractvault.app"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@contractvault.app"`
	DevOutputDir         string `env:"EMAIL_DEV_OUTPUT_DIR" envDefault:"./tmp/emails"`
}
