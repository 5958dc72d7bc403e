package ports

import (
	"context"

	"github.com/eleven-am/cascade/internal/domain"
)

// SQLRunner executes queries against credential-derived or default
// connections. Connections are scoped to a single Query call and released
// before it returns.
type SQLRunner interface {
	ConnectionFor(cred *domain.Credential) (ConnectionInfo, error)
	Default() (ConnectionInfo, error)
	Query(ctx context.Context, conn ConnectionInfo, query string) ([]map[string]interface{}, error)
}

type ConnectionInfo struct {
	Driver string
	DSN    string
}

type HTTPClient interface {
	Request(ctx context.Context, method, url string, headers map[string]string, body string) (int, []byte, error)
}

type ObjectStore interface {
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	Upload(ctx context.Context, bucket, key string, content []byte) error
	Delete(ctx context.Context, bucket, key string) error
}

type ObjectStoreFactory interface {
	ForCredential(cred *domain.Credential) (ObjectStore, error)
}

// TransferSession is an open file-transfer connection. Callers must Close it
// on every exit path.
type TransferSession interface {
	List(path string) ([]string, error)
	Upload(path string, content []byte) error
	Download(path string) ([]byte, error)
	Delete(path string) error
	Close() error
}

type TransferFactory interface {
	Connect(host string, port int, cred *domain.Credential) (TransferSession, error)
}

// Sandbox evaluates a user-supplied script against an environment holding
// only the execution context and an explicit allow-list of helpers.
type Sandbox interface {
	Run(ctx context.Context, code string, env map[string]interface{}) (interface{}, error)
}

// Exporter materializes query result rows as a tabular artifact and returns
// its path.
type Exporter interface {
	Export(rows []map[string]interface{}, executionID, nodeID string) (string, error)
}

// Collaborators is the full set of side-effecting dependencies handed to the
// run controller at construction. No ambient singletons.
type Collaborators struct {
	Storage     Storage
	Jobs        JobClientFactory
	SQL         SQLRunner
	HTTP        HTTPClient
	ObjectStore ObjectStoreFactory
	Transfer    TransferFactory
	Sandbox     Sandbox
	Exporter    Exporter
}
