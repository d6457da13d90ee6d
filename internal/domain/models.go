package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ==================== ENUMS ====================

type NodeType string

const (
	NodeTypeValidator NodeType = "validator"
	NodeTypeRPC       NodeType = "rpc"
	NodeTypeArchive   NodeType = "archive"
	NodeTypeMiner     NodeType = "miner"
)

type NodeStatus string

const (
	NodeStatusProvisioning NodeStatus = "provisioning"
	NodeStatusOnline       NodeStatus = "online"
	NodeStatusStopped      NodeStatus = "stopped"
	NodeStatusUpgrading    NodeStatus = "upgrading"
	NodeStatusFailed       NodeStatus = "failed"
	NodeStatusDeleting     NodeStatus = "deleting"
)

type HostStatus string

const (
	HostStatusPending HostStatus = "pending"
	HostStatusOnline  HostStatus = "online"
	HostStatusOffline HostStatus = "offline"
)

// ==================== JSONB TYPES ====================

type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.New("failed to scan JSONB: invalid type")
	}
}

// ==================== ENTITIES ====================

type Organization struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name string `gorm:"size:255;not null" json:"name"`
}

type User struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:text" json:"-"`
	OrgID        string `gorm:"type:uuid;not null;index" json:"org_id"`
}

type Host struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name    string     `gorm:"size:255;not null" json:"name"`
	OrgID   string     `gorm:"type:uuid;not null;index" json:"org_id"`
	Status  HostStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	Version string     `gorm:"size:64" json:"version,omitempty"`
	IP      string     `gorm:"size:45" json:"ip,omitempty"`
}

type Blockchain struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

type Node struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name         string     `gorm:"size:255;not null" json:"name"`
	HostID       string     `gorm:"type:uuid;not null;index" json:"host_id"`
	BlockchainID string     `gorm:"type:uuid;not null;index" json:"blockchain_id"`
	OrgID        string     `gorm:"type:uuid;not null;index" json:"org_id"`
	NodeType     NodeType   `gorm:"size:20;not null" json:"node_type"`
	Version      string     `gorm:"size:64" json:"version,omitempty"`
	Status       NodeStatus `gorm:"size:20;not null;default:'provisioning'" json:"status"`

	// Relationships
	Host       *Host       `gorm:"foreignKey:HostID" json:"host,omitempty"`
	Blockchain *Blockchain `gorm:"foreignKey:BlockchainID" json:"blockchain,omitempty"`
}
