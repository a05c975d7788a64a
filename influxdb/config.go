/*
 The MIT License

 Permission is hereby granted, free of charge, to any person obtaining a copy
 of this software and associated documentation files (the "Software"), to deal
 in the Software without restriction, including without limitation the rights
 to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 copies of the Software, and to permit persons to whom the Software is
 furnished to do so, subject to the following conditions:

 The above copyright notice and this permission notice shall be included in
 all copies or substantial portions of the Software.

 THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
 THE SOFTWARE.
*/

package influxdb

import (
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	envInfluxHost          = "INFLUX_HOST"
	envInfluxDatabase      = "INFLUX_DATABASE"
	envInfluxPrecision     = "INFLUX_PRECISION"
	envInfluxGzipThreshold = "INFLUX_GZIP_THRESHOLD"
	envInfluxV2            = "INFLUX_V2"
)

// ClientConfig holds the parameters for creating a new client.
// The only mandatory field is Host.
type ClientConfig struct {
	// Host holds the URL of the InfluxDB server to connect to.
	// This must be non-empty. E.g. http://localhost:8086
	Host string `yaml:"host"`

	// Database used by the client.
	Database string `yaml:"database"`

	// HTTPClient is used to make API requests.
	//
	// This can be used to specify a custom TLS configuration
	// (TLSClientConfig), a custom request timeout (Timeout),
	// or other customization as required.
	//
	// It HTTPClient is nil, http.DefaultClient will be used.
	HTTPClient *http.Client `yaml:"-"`

	// Logger receives request logs. If nil, slog.Default() is used.
	Logger *slog.Logger `yaml:"-"`

	// Write options
	WriteOptions *WriteOptions `yaml:"-"`

	// Default HTTP headers to be included in requests
	Headers http.Header `yaml:"headers"`
}

// fileConfig is the YAML form of ClientConfig.
type fileConfig struct {
	ClientConfig  `yaml:",inline"`
	Precision     string `yaml:"precision"`
	GzipThreshold *int   `yaml:"gzip_threshold"`
	V2            bool   `yaml:"v2"`
}

// validate validates the config.
func (c *ClientConfig) validate() error {
	if c.Host == "" {
		return errors.New("empty server URL")
	}
	return nil
}

// writeOptions returns the configured write options, creating them from the
// defaults on first use.
func (c *ClientConfig) writeOptions() *WriteOptions {
	if c.WriteOptions == nil {
		wo := DefaultWriteOptions
		c.WriteOptions = &wo
	}
	return c.WriteOptions
}

// parse initializes the client config from provided connection string.
func (c *ClientConfig) parse(connectionString string) error {
	u, err := url.Parse(connectionString)
	if err != nil {
		return err
	}

	if !(u.Scheme == "http" || u.Scheme == "https") {
		return errors.New("only http or https is supported")
	}

	values := u.Query()

	u.RawQuery = ""
	c.Host = u.String()

	if database, ok := values["database"]; ok {
		c.Database = database[0]
	}
	if precision, ok := values["precision"]; ok {
		if err := c.setPrecision(precision[0]); err != nil {
			return err
		}
	}
	if gzipThreshold, ok := values["gzipThreshold"]; ok {
		if err := c.setGzipThreshold(gzipThreshold[0]); err != nil {
			return err
		}
	}
	if v2, ok := values["v2"]; ok {
		if err := c.setV2(v2[0]); err != nil {
			return err
		}
	}

	return nil
}

// env initializes the client config from environment variables.
func (c *ClientConfig) env() error {
	c.Host = os.Getenv(envInfluxHost)
	c.Database = os.Getenv(envInfluxDatabase)
	if precision, ok := os.LookupEnv(envInfluxPrecision); ok {
		if err := c.setPrecision(precision); err != nil {
			return err
		}
	}
	if gzipThreshold, ok := os.LookupEnv(envInfluxGzipThreshold); ok {
		if err := c.setGzipThreshold(gzipThreshold); err != nil {
			return err
		}
	}
	if v2, ok := os.LookupEnv(envInfluxV2); ok {
		if err := c.setV2(v2); err != nil {
			return err
		}
	}

	return nil
}

func (c *ClientConfig) setPrecision(s string) error {
	unit, err := ParseTimeUnit(s)
	if err != nil {
		return err
	}
	c.writeOptions().Precision = unit
	return nil
}

func (c *ClientConfig) setGzipThreshold(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.Wrap(err, "parsing gzip threshold")
	}
	c.writeOptions().GzipThreshold = n
	return nil
}

func (c *ClientConfig) setV2(s string) error {
	v2, err := strconv.ParseBool(s)
	if err != nil {
		return errors.Wrap(err, "parsing v2 flag")
	}
	c.writeOptions().UseV2 = v2
	return nil
}

// LoadConfig reads a ClientConfig from a YAML file.
//
//	host: http://localhost:8086
//	database: weather
//	precision: ms
//	gzip_threshold: 4096
//	v2: false
//	headers:
//	  X-Request-Source: [ingest]
//
// Parameters:
//   - path: The path of the YAML file.
//
// Returns:
//   - The loaded config.
//   - An error, if any.
func LoadConfig(path string) (ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ClientConfig{}, errors.Wrap(err, "reading config file")
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return ClientConfig{}, errors.Wrap(err, "parsing config file")
	}
	cfg := fc.ClientConfig
	if fc.Precision != "" {
		if err := cfg.setPrecision(fc.Precision); err != nil {
			return ClientConfig{}, err
		}
	}
	if fc.GzipThreshold != nil {
		cfg.writeOptions().GzipThreshold = *fc.GzipThreshold
	}
	if fc.V2 {
		cfg.writeOptions().UseV2 = true
	}
	return cfg, nil
}
