package models

import "encoding/json"

// NodeKind represents the role of a node within a flow graph.
type NodeKind string

const (
	NodeKindSource      NodeKind = "source"      // Entry point, exactly one per flow
	NodeKindTransform   NodeKind = "transform"   // Rewrites the current payload
	NodeKindDestination NodeKind = "destination" // Delivers the payload externally
)

// Transform subtypes carried in node config under "type".
const (
	TransformTypeScript = "script"
	TransformTypeAI     = "ai"
)

// Destination subtypes carried in node config under "type".
const (
	DestinationTypeWebhook = "webhook"
	DestinationTypeSlack   = "slack"
	DestinationTypeDiscord = "discord"
)

// FlowNode is one vertex of a flow graph. Config is opaque here; each
// executor parses the fields it needs.
type FlowNode struct {
	ID     string         `json:"id"   validate:"required"`
	Kind   NodeKind       `json:"kind" validate:"required,oneof=source transform destination"`
	Config map[string]any `json:"config"`
}

// ConfigString returns a string config field, or the fallback when absent.
func (n *FlowNode) ConfigString(key, fallback string) string {
	if v, ok := n.Config[key].(string); ok && v != "" {
		return v
	}

	return fallback
}

// PayloadSchema returns the optional JSON schema a source node declares for
// inbound payloads, or nil when none is configured.
func (n *FlowNode) PayloadSchema() map[string]any {
	schema, _ := n.Config["payload_schema"].(map[string]any)

	return schema
}

// FlowEdge is a directed arc between two nodes, referenced by id.
type FlowEdge struct {
	ID           string `json:"id"             validate:"required"`
	SourceNodeID string `json:"source_node_id" validate:"required"`
	TargetNodeID string `json:"target_node_id" validate:"required"`
}

// ParseNodes decodes the JSON string form in which flow documents store
// their node list. An empty string decodes to no nodes.
func ParseNodes(raw string) ([]FlowNode, error) {
	if raw == "" {
		return []FlowNode{}, nil
	}

	var nodes []FlowNode
	if err := json.Unmarshal([]byte(raw), &nodes); err != nil {
		return nil, err
	}

	return nodes, nil
}

// ParseEdges decodes the JSON string form of a flow's edge list.
func ParseEdges(raw string) ([]FlowEdge, error) {
	if raw == "" {
		return []FlowEdge{}, nil
	}

	var edges []FlowEdge
	if err := json.Unmarshal([]byte(raw), &edges); err != nil {
		return nil, err
	}

	return edges, nil
}

// SerializeNodes encodes a node list back to the stored string form.
func SerializeNodes(nodes []FlowNode) (string, error) {
	data, err := json.Marshal(nodes)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// SerializeEdges encodes an edge list back to the stored string form.
func SerializeEdges(edges []FlowEdge) (string, error) {
	data, err := json.Marshal(edges)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
