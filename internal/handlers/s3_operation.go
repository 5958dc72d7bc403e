package handlers

import (
	"context"
	"log/slog"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
	"github.com/eleven-am/cascade/internal/resolver"
)

// S3Operation dispatches a list, upload, or delete against the object store
// derived from the node's credential.
type S3Operation struct {
	logger *slog.Logger
}

func (h *S3Operation) Type() domain.NodeType {
	return domain.NodeTypeS3Operation
}

func (h *S3Operation) Execute(ctx context.Context, req *ports.HandlerRequest) (*ports.HandlerOutcome, error) {
	cfg := req.Node.Config

	bucket := resolver.Resolve(stringField(cfg, "bucket"), req.Context)
	operation := stringField(cfg, "operation")
	if operation == "" {
		operation = "list"
	}
	key := resolver.Resolve(stringField(cfg, "key"), req.Context)

	credID := stringField(cfg, "credentialId")
	if credID == "" {
		return nil, domain.NewConfigurationError("s3 credentials required", map[string]interface{}{"node_id": req.Node.ID})
	}
	cred, err := req.Collab.Storage.GetCredential(ctx, credID)
	if err != nil || cred.Type != domain.CredentialTypeS3 {
		return nil, domain.NewConfigurationError("invalid s3 credential", map[string]interface{}{"credential_id": credID})
	}

	store, err := req.Collab.ObjectStore.ForCredential(cred)
	if err != nil {
		return nil, err
	}

	switch operation {
	case "list":
		files, err := store.List(ctx, bucket, stringField(cfg, "prefix"))
		if err != nil {
			return nil, domain.NewExternalError("s3 list failed", err)
		}
		return &ports.HandlerOutcome{
			ContextUpdate: map[string]interface{}{
				req.Node.ID: map[string]interface{}{"files": files},
			},
			Result: domain.NodeResult{Status: domain.NodeResultSuccess, Files: files},
		}, nil

	case "upload":
		content := resolver.Resolve(stringField(cfg, "content"), req.Context)
		if err := store.Upload(ctx, bucket, key, []byte(content)); err != nil {
			return nil, domain.NewExternalError("s3 upload failed", err)
		}
		return &ports.HandlerOutcome{Result: domain.NodeResult{Status: domain.NodeResultSuccess}}, nil

	case "delete":
		if err := store.Delete(ctx, bucket, key); err != nil {
			return nil, domain.NewExternalError("s3 delete failed", err)
		}
		return &ports.HandlerOutcome{Result: domain.NodeResult{Status: domain.NodeResultSuccess}}, nil

	default:
		return nil, domain.NewUnsupportedError("unsupported s3 operation", map[string]interface{}{"operation": operation})
	}
}
