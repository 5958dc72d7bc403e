package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
	"github.com/eleven-am/cascade/internal/resolver"
)

// SQLQuery runs a query against a credential-derived connection, or against
// the engine's own default connection when no credential is configured, and
// exports the result rows as a tabular artifact.
type SQLQuery struct {
	logger *slog.Logger
}

func (h *SQLQuery) Type() domain.NodeType {
	return domain.NodeTypeSQLQuery
}

func (h *SQLQuery) Execute(ctx context.Context, req *ports.HandlerRequest) (*ports.HandlerOutcome, error) {
	query := resolver.Resolve(stringField(req.Node.Config, "query"), req.Context)
	if query == "" {
		return nil, domain.NewConfigurationError("sql_query requires a query", map[string]interface{}{"node_id": req.Node.ID})
	}

	var (
		conn ports.ConnectionInfo
		err  error
	)
	if credID := stringField(req.Node.Config, "credentialId"); credID != "" {
		cred, lookupErr := req.Collab.Storage.GetCredential(ctx, credID)
		if lookupErr != nil {
			return nil, domain.NewConfigurationError("sql credential not found", map[string]interface{}{"credential_id": credID})
		}
		conn, err = req.Collab.SQL.ConnectionFor(cred)
	} else {
		conn, err = req.Collab.SQL.Default()
	}
	if err != nil {
		return nil, err
	}

	rows, err := req.Collab.SQL.Query(ctx, conn, query)
	if err != nil {
		return nil, domain.NewExternalError("SQL error", err)
	}

	exportPath := ""
	if len(rows) > 0 && req.Collab.Exporter != nil {
		exportPath, err = req.Collab.Exporter.Export(rows, req.ExecutionID, req.Node.ID)
		if err != nil {
			h.logger.Warn("query result export failed",
				"node_id", req.Node.ID,
				"error", err.Error(),
			)
			exportPath = ""
		} else {
			req.Progress(domain.LogLevelInfo, fmt.Sprintf("Query results exported to %s", exportPath))
		}
	}

	count := len(rows)
	return &ports.HandlerOutcome{
		ContextUpdate: map[string]interface{}{
			"queryResult": map[string]interface{}{"record_count": count},
			req.Node.ID: map[string]interface{}{
				"count":       count,
				"export_path": exportPath,
				"results":     rows,
			},
		},
		Result: domain.NodeResult{
			Status:     domain.NodeResultSuccess,
			Count:      &count,
			ExportPath: exportPath,
		},
	}, nil
}
