package services

import (
	"context"
	"strings"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
)

// The broker asks us whether a connected client may touch a topic. Two
// policies cover the two client populations: host agents subscribing to
// their own command topics, and UI users subscribing to node topics owned
// by their organization. Denials carry no reason back to the broker; the
// reason only shows up in our logs.

// HostACLPolicy allows a host agent onto `/hosts/<id>/...` topics iff the
// id segment matches the host id baked into its token.
type HostACLPolicy struct {
	auth   ports.AuthService
	logger *logger.Logger
}

func NewHostACLPolicy(auth ports.AuthService, log *logger.Logger) *HostACLPolicy {
	return &HostACLPolicy{auth: auth, logger: log}
}

func (p *HostACLPolicy) Allow(ctx context.Context, token, topic string) bool {
	principal, err := p.auth.ParseToken(token)
	if err != nil || principal.Kind != ports.PrincipalHost {
		p.logger.Warnw("mqtt_host_acl_bad_token", "topic", topic)
		return false
	}

	hostID, ok := hostTopicID(topic)
	if !ok {
		p.logger.Warnw("mqtt_host_acl_bad_topic", "topic", topic)
		return false
	}

	allowed := hostID == principal.HostID
	p.logger.Infow("mqtt_host_acl_decision", "topic", topic, "allowed", allowed)
	return allowed
}

// hostTopicID extracts the host id segment from `/hosts/<id>/...`.
func hostTopicID(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[0] != "" || parts[1] != "hosts" || parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

// UserACLPolicy allows a user onto `/nodes/<uuid>/...` topics iff the node
// belongs to the organization in the user's token. Every other topic shape
// is denied.
type UserACLPolicy struct {
	auth   ports.AuthService
	nodes  ports.NodeRepository
	logger *logger.Logger
}

func NewUserACLPolicy(auth ports.AuthService, nodes ports.NodeRepository, log *logger.Logger) *UserACLPolicy {
	return &UserACLPolicy{auth: auth, nodes: nodes, logger: log}
}

func (p *UserACLPolicy) Allow(ctx context.Context, token, topic string) bool {
	principal, err := p.auth.ParseToken(token)
	if err != nil || principal.Kind != ports.PrincipalUser || principal.OrgID == "" {
		p.logger.Warnw("mqtt_user_acl_bad_token", "topic", topic)
		return false
	}

	rest, found := strings.CutPrefix(topic, "/nodes/")
	if !found || len(rest) < 36 {
		p.logger.Warnw("mqtt_user_acl_bad_topic", "topic", topic)
		return false
	}
	nodeID, err := uuid.Parse(rest[:36])
	if err != nil {
		p.logger.Warnw("mqtt_user_acl_bad_node_id", "topic", topic)
		return false
	}

	node, err := p.nodes.GetByID(ctx, nodeID.String())
	if err != nil {
		p.logger.Warnw("mqtt_user_acl_node_lookup_failed", "node_id", nodeID, "error", err)
		return false
	}

	allowed := node.OrgID == principal.OrgID
	p.logger.Infow("mqtt_user_acl_decision", "topic", topic, "allowed", allowed)
	return allowed
}
