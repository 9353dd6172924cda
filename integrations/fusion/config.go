package fusion

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Credentials holds the connection details for one Fusion instance.
type Credentials struct {
	BaseURL     string
	Username    string
	Password    string
	BIPEndpoint string
	ReportPath  string
}

// LoadCredentials reads credentials from the environment, loading a
// fusion.env file first when one is present. An explicit envPath overrides
// the default file name.
func LoadCredentials(envPath string) (Credentials, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return Credentials{}, fmt.Errorf("fusion: load %s: %w", envPath, err)
		}
	} else {
		// Best effort; plain environment variables are fine too.
		_ = godotenv.Load("fusion.env")
	}

	creds := Credentials{
		BaseURL:     os.Getenv("FUSION_BASE_URL"),
		Username:    os.Getenv("FUSION_USERNAME"),
		Password:    os.Getenv("FUSION_PASSWORD"),
		BIPEndpoint: os.Getenv("BIP_ENDPOINT"),
		ReportPath:  os.Getenv("BIP_REPORT_PATH"),
	}
	if creds.BaseURL == "" || creds.Username == "" || creds.Password == "" {
		return Credentials{}, fmt.Errorf("fusion: FUSION_BASE_URL, FUSION_USERNAME and FUSION_PASSWORD must be set")
	}
	if creds.BIPEndpoint == "" {
		creds.BIPEndpoint = creds.BaseURL + "/xmlpserver/services/v2/ReportService"
	}
	return creds, nil
}
