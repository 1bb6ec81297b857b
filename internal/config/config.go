package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	DatabaseURL string `env:"DATABASE_URL"`

	Paxos Paxos `envPrefix:"PAXUM_"`
}

type Paxos struct {
	BaseApiURL    string `env:"API_BASE_URL" envDefault:"https://api.sandbox.paxos.com/v2"`
	OAuthURL      string `env:"OAUTH_URL" envDefault:"https://oauth.paxos.com/oauth2/token"`
	ClientID      string `env:"CLIENT_ID"`
	ClientSecret  string `env:"CLIENT_SECRET"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	// PayURLTemplate builds a hosted payment URL from the provider payment id
	// when the create response omits one. The default is unverified against
	// the provider contract, override it in the environment.
	PayURLTemplate string `env:"PAY_URL_TEMPLATE" envDefault:"https://pay.paxum.com/pay/%s"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
