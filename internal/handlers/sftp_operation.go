package handlers

import (
	"context"
	"log/slog"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
	"github.com/eleven-am/cascade/internal/resolver"
)

// SFTPOperation opens one transfer session, runs a single list, upload,
// download, or delete, and closes the session on every exit path.
type SFTPOperation struct {
	logger *slog.Logger
}

func (h *SFTPOperation) Type() domain.NodeType {
	return domain.NodeTypeSFTPOperation
}

func (h *SFTPOperation) Execute(ctx context.Context, req *ports.HandlerRequest) (*ports.HandlerOutcome, error) {
	cfg := req.Node.Config

	host := resolver.Resolve(stringField(cfg, "host"), req.Context)
	if host == "" {
		return nil, domain.NewConfigurationError("sftp_operation requires a host", map[string]interface{}{"node_id": req.Node.ID})
	}
	port := intField(cfg, "port", 22)
	operation := stringField(cfg, "operation")
	if operation == "" {
		operation = "list"
	}
	remotePath := resolver.Resolve(stringField(cfg, "remotePath"), req.Context)

	credID := stringField(cfg, "credentialId")
	if credID == "" {
		return nil, domain.NewConfigurationError("sftp credentials required", map[string]interface{}{"node_id": req.Node.ID})
	}
	cred, err := req.Collab.Storage.GetCredential(ctx, credID)
	if err != nil || cred.Type != domain.CredentialTypeSFTP {
		return nil, domain.NewConfigurationError("invalid sftp credential", map[string]interface{}{"credential_id": credID})
	}

	session, err := req.Collab.Transfer.Connect(host, port, cred)
	if err != nil {
		return nil, domain.NewExternalError("sftp connect failed", err)
	}
	defer session.Close()

	switch operation {
	case "list":
		path := remotePath
		if path == "" {
			path = "."
		}
		files, err := session.List(path)
		if err != nil {
			return nil, domain.NewExternalError("sftp list failed", err)
		}
		return &ports.HandlerOutcome{
			ContextUpdate: map[string]interface{}{
				req.Node.ID: map[string]interface{}{"files": files},
			},
			Result: domain.NodeResult{Status: domain.NodeResultSuccess, Files: files},
		}, nil

	case "upload":
		content := resolver.Resolve(stringField(cfg, "content"), req.Context)
		if err := session.Upload(remotePath, []byte(content)); err != nil {
			return nil, domain.NewExternalError("sftp upload failed", err)
		}
		return &ports.HandlerOutcome{Result: domain.NodeResult{Status: domain.NodeResultSuccess}}, nil

	case "download":
		content, err := session.Download(remotePath)
		if err != nil {
			return nil, domain.NewExternalError("sftp download failed", err)
		}
		return &ports.HandlerOutcome{
			ContextUpdate: map[string]interface{}{
				req.Node.ID: map[string]interface{}{"content": string(content)},
			},
			Result: domain.NodeResult{Status: domain.NodeResultSuccess, Content: string(content)},
		}, nil

	case "delete":
		if err := session.Delete(remotePath); err != nil {
			return nil, domain.NewExternalError("sftp delete failed", err)
		}
		return &ports.HandlerOutcome{Result: domain.NodeResult{Status: domain.NodeResultSuccess}}, nil

	default:
		return nil, domain.NewUnsupportedError("unsupported sftp operation", map[string]interface{}{"operation": operation})
	}
}
