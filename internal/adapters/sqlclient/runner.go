// Package sqlclient runs workflow queries against postgres or sqlserver
// connections derived from credentials. Connections live for a single query.
package sqlclient

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"

	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
)

type Runner struct {
	defaults domain.SQLConfig
	logger   *slog.Logger
}

func New(defaults domain.SQLConfig, logger *slog.Logger) *Runner {
	return &Runner{
		defaults: defaults,
		logger:   logger.With("component", "sqlclient"),
	}
}

func (r *Runner) ConnectionFor(cred *domain.Credential) (ports.ConnectionInfo, error) {
	switch cred.Type {
	case domain.CredentialTypePostgres:
		return ports.ConnectionInfo{Driver: "postgres", DSN: buildDSN("postgres", cred)}, nil
	case domain.CredentialTypeMSSQL:
		return ports.ConnectionInfo{Driver: "sqlserver", DSN: buildDSN("sqlserver", cred)}, nil
	default:
		return ports.ConnectionInfo{}, domain.NewUnsupportedError("unsupported sql credential type", map[string]interface{}{
			"credential_id": cred.ID,
			"type":          string(cred.Type),
		})
	}
}

func (r *Runner) Default() (ports.ConnectionInfo, error) {
	if r.defaults.DefaultDSN == "" {
		return ports.ConnectionInfo{}, domain.NewConfigurationError("no default sql connection configured", nil)
	}
	driver := r.defaults.DefaultDriver
	if driver == "" {
		driver = "postgres"
	}
	return ports.ConnectionInfo{Driver: driver, DSN: r.defaults.DefaultDSN}, nil
}

func (r *Runner) Query(ctx context.Context, conn ports.ConnectionInfo, query string) ([]map[string]interface{}, error) {
	db, err := sql.Open(conn.Driver, conn.DSN)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		scanTargets := make([]interface{}, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.logger.Debug("query executed", "driver", conn.Driver, "rows", len(out))
	return out, nil
}

// buildDSN assembles a URL-style DSN, which both drivers accept. An explicit
// dsn field in the credential wins over the individual parts.
func buildDSN(scheme string, cred *domain.Credential) string {
	if dsn := cred.Field("dsn", ""); dsn != "" {
		return dsn
	}

	host := cred.Field("host", "localhost")
	if port := cred.Field("port", ""); port != "" {
		host = fmt.Sprintf("%s:%s", host, port)
	}

	u := url.URL{
		Scheme: scheme,
		Host:   host,
	}
	if user := cred.Field("username", ""); user != "" {
		u.User = url.UserPassword(user, cred.Field("password", ""))
	}

	query := url.Values{}
	switch scheme {
	case "postgres":
		u.Path = cred.Field("database", "")
		if sslmode := cred.Field("sslmode", ""); sslmode != "" {
			query.Set("sslmode", sslmode)
		}
	case "sqlserver":
		if database := cred.Field("database", ""); database != "" {
			query.Set("database", database)
		}
	}
	u.RawQuery = query.Encode()

	return u.String()
}
