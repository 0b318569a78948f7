package regions

import (
	"context"
	"fmt"
	"time"

	"github.com/healthhive/registry/errors"
)

var ErrNotFound = fmt.Errorf("%w: barangay not found", errors.NotFound)

const (
	ClusterCoastal = "coastal"
	ClusterUpland  = "upland"
)

// Region is a barangay catchment area served by the health unit.
type Region struct {
	BarangayId string    `bson:"barangay_id" json:"barangay_id"`
	Name       string    `bson:"name" json:"name"`
	Cluster    string    `bson:"cluster" json:"cluster"`
	Population int       `bson:"population" json:"population"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

type Service interface {
	Get(ctx context.Context, name string) (*Region, error)
	List(ctx context.Context) ([]*Region, error)
}

func NewService(repo Repository) Service {
	return repo
}
