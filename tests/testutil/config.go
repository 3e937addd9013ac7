package testutil

import (
	"testing"

	"github.com/madeiras-ouro-preto/sales-api/config"
)

// NewTestConfig returns a configuration for handler tests. Uploads go to a
// per-test temp directory and dates are bucketed in UTC.
func NewTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabaseURL:    "sqlite://test",
		Port:           "8080",
		GoEnv:          "test",
		Auth0Domain:    "test.auth0.com",
		Auth0Audience:  "https://api.test.com",
		LogLevel:       "silent",
		AllowedOrigins: []string{"http://localhost:5173"},
		UploadDir:      t.TempDir(),
		Timezone:       "UTC",
		Company: config.CompanyInfo{
			Name:         "Madeiras Ouro Preto",
			Address:      "R. Dona Francisca, 4490 - Santo Antônio, Joinville",
			PhoneDisplay: "(47) 98435-0712",
			WhatsApp:     "5547984350712",
		},
	}
}
