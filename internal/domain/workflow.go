package domain

import (
	"time"
)

type NodeType string

const (
	NodeTypeAirflowTrigger  NodeType = "airflow_trigger"
	NodeTypeAirflowLogCheck NodeType = "airflow_log_check"
	NodeTypeParallelDags    NodeType = "parallel_dags"
	NodeTypeSQLQuery        NodeType = "sql_query"
	NodeTypeAPIRequest      NodeType = "api_request"
	NodeTypeScript          NodeType = "python_script"
	NodeTypeS3Operation     NodeType = "s3_operation"
	NodeTypeSFTPOperation   NodeType = "sftp_operation"
	NodeTypeCondition       NodeType = "condition"
)

type Workflow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Nodes       []Node    `json:"nodes"`
	Edges       []Edge    `json:"edges"`
	LastPrompt  string    `json:"lastPrompt,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Node struct {
	ID     string                 `json:"id"`
	Type   NodeType               `json:"type"`
	Label  string                 `json:"label,omitempty"`
	Config map[string]interface{} `json:"config,omitempty"`
}

// Edge connects Source to Target. A non-empty SourceHandle guards the edge:
// it only fires when the source node selected that handle.
type Edge struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}

func (w *Workflow) NodeByID(id string) (*Node, bool) {
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			return &w.Nodes[i], true
		}
	}
	return nil, false
}

// Roots returns the nodes with no incoming edge, in node-sequence order.
func (w *Workflow) Roots() []string {
	hasIncoming := make(map[string]bool, len(w.Nodes))
	for _, e := range w.Edges {
		hasIncoming[e.Target] = true
	}

	roots := make([]string, 0, len(w.Nodes))
	for _, n := range w.Nodes {
		if !hasIncoming[n.ID] {
			roots = append(roots, n.ID)
		}
	}
	return roots
}
