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
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type (
	// DatabaseClient manages databases through InfluxQL statements.
	DatabaseClient struct {
		client *Client
	}

	// Database describes a database to create.
	Database struct {
		// Name of the database. Empty means the client database.
		Name string
		// RetentionPolicy, if set, becomes the default retention policy of the database.
		RetentionPolicy *RetentionPolicy
	}

	// RetentionPolicy describes how long data is kept.
	RetentionPolicy struct {
		Name string
		// Duration is the retention period; zero keeps data forever.
		Duration           time.Duration
		ShardGroupDuration time.Duration
		Replication        int
	}
)

// NewDatabaseClient creates new DatabaseClient with given InfluxDB client.
func NewDatabaseClient(client *Client) *DatabaseClient {
	return &DatabaseClient{client: client}
}

// CreateDatabase creates a database. Creating a database that already exists
// is not an error.
func (c *DatabaseClient) CreateDatabase(ctx context.Context, db *Database) error {
	if db == nil {
		return fmt.Errorf("database must not be nil")
	}
	name := db.Name
	if name == "" {
		name = c.client.config.Database
	}
	if name == "" {
		return invalidQuery("database not specified")
	}

	stmt := "CREATE DATABASE " + quoteIdent(name)
	if rp := db.RetentionPolicy; rp != nil {
		stmt += " WITH DURATION " + formatDuration(rp.Duration)
		if rp.Replication > 0 {
			stmt += fmt.Sprintf(" REPLICATION %d", rp.Replication)
		}
		if rp.ShardGroupDuration > 0 {
			stmt += " SHARD DURATION " + formatDuration(rp.ShardGroupDuration)
		}
		if rp.Name != "" {
			stmt += " NAME " + quoteIdent(rp.Name)
		}
	}
	return c.exec(ctx, stmt)
}

// DropDatabase deletes a database and all of its data.
func (c *DatabaseClient) DropDatabase(ctx context.Context, name string) error {
	if name == "" {
		return invalidQuery("database not specified")
	}
	return c.exec(ctx, "DROP DATABASE "+quoteIdent(name))
}

// ListDatabases returns the names of all databases.
func (c *DatabaseClient) ListDatabases(ctx context.Context) ([]string, error) {
	res, err := c.client.JSONQuery(ctx, NewReadQuery("SHOW DATABASES"))
	if err != nil {
		return nil, err
	}
	type row struct {
		Name string `json:"name"`
	}
	ret, err := DeserializeNext[row](res)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, s := range ret.Series {
		for _, r := range s.Values {
			names = append(names, r.Name)
		}
	}
	return names, nil
}

func (c *DatabaseClient) exec(ctx context.Context, stmt string) error {
	c.client.logger.Debug("influxdb statement", "q", stmt)
	// Statements can contain SELECT or SHOW inside identifiers, so the
	// method is fixed instead of inferred from the text.
	resp, err := c.client.query(ctx, http.MethodPost, ValidQuery(stmt), newQueryOptions(&DefaultQueryOptions, nil))
	if err != nil {
		return err
	}
	return checkTextResponse(resp)
}

var identEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quoteIdent(s string) string {
	return `"` + identEscaper.Replace(s) + `"`
}

// formatDuration renders d as an InfluxQL duration literal.
func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "INF"
	case d%(24*time.Hour) == 0:
		return fmt.Sprintf("%dd", d/(24*time.Hour))
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	default:
		return fmt.Sprintf("%ds", d/time.Second)
	}
}
