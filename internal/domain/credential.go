package domain

import (
	"time"
)

type CredentialType string

const (
	CredentialTypeAirflow  CredentialType = "airflow"
	CredentialTypePostgres CredentialType = "postgres"
	CredentialTypeMSSQL    CredentialType = "mssql"
	CredentialTypeS3       CredentialType = "s3"
	CredentialTypeSFTP     CredentialType = "sftp"
)

// Credential is an opaque external reference resolved by id. Data holds
// type-specific connection fields (baseUrl, username, password, host, port,
// database, accessKey, secretKey, region). Callers must never log Data.
type Credential struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Type      CredentialType    `json:"type"`
	Data      map[string]string `json:"data"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Field returns the named data field or fallback when absent or empty.
func (c *Credential) Field(key, fallback string) string {
	if c == nil {
		return fallback
	}
	if v, ok := c.Data[key]; ok && v != "" {
		return v
	}
	return fallback
}
