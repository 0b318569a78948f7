package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionView   = "view"
)

const (
	ResourcePatient = "patient"
	ResourceVisit   = "visit"
)

// Entry is an append-only audit record. Entries are never updated or
// deleted.
type Entry struct {
	LogId        string                 `bson:"log_id" json:"log_id"`
	Action       string                 `bson:"action" json:"action"`
	ResourceType string                 `bson:"resource_type" json:"resource_type"`
	ResourceId   string                 `bson:"resource_id" json:"resource_id"`
	UserId       string                 `bson:"user_id" json:"user_id"`
	UserRole     string                 `bson:"user_role" json:"user_role"`
	Timestamp    time.Time              `bson:"timestamp" json:"timestamp"`
	Barangay     string                 `bson:"barangay,omitempty" json:"barangay,omitempty"`
	ChangesMade  map[string]interface{} `bson:"changes_made,omitempty" json:"changes_made,omitempty"`
}

// NewLogId generates an audit log identifier.
func NewLogId(now time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("AUDIT-%d-%s", now.Unix(), suffix)
}
