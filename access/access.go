package access

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/healthhive/registry/errors"
)

type Role string

// Roles form a hierarchy: field workers and nurses are restricted to
// their assigned barangays, supervisors and admins see everything.
const (
	RoleFieldWorker Role = "bhw"
	RoleNurse       Role = "rhu_nurse"
	RoleSupervisor  Role = "supervisor"
	RoleAdmin       Role = "admin"
)

func (r Role) IsRegionRestricted() bool {
	return r != RoleSupervisor && r != RoleAdmin
}

// Caller is the authenticated identity attached to every request.
type Caller struct {
	Id              string
	Role            Role
	AssignedRegions []string
}

// RegionFilter is the resolved data-visibility constraint for a caller.
// The zero value with All set denotes unrestricted access.
type RegionFilter struct {
	All     bool
	Regions []string
}

// ResolveScope decides which barangays a caller may touch. It has no
// side effects; every region-scoped read and write consults it first.
func ResolveScope(caller Caller, requestedRegion *string) (RegionFilter, error) {
	if !caller.Role.IsRegionRestricted() {
		if requestedRegion != nil {
			return RegionFilter{Regions: []string{*requestedRegion}}, nil
		}
		return RegionFilter{All: true}, nil
	}

	assigned := mapset.NewSet(caller.AssignedRegions...)
	if requestedRegion != nil {
		if !assigned.Contains(*requestedRegion) {
			return RegionFilter{}, fmt.Errorf("%w: no access to barangay: %s", errors.Forbidden, *requestedRegion)
		}
		return RegionFilter{Regions: []string{*requestedRegion}}, nil
	}

	return RegionFilter{Regions: caller.AssignedRegions}, nil
}

// CanAccessRegion reports whether the caller may touch data owned by
// the given barangay.
func CanAccessRegion(caller Caller, region string) bool {
	if !caller.Role.IsRegionRestricted() {
		return true
	}
	return mapset.NewSet(caller.AssignedRegions...).Contains(region)
}

// Allows reports whether the filter admits the given barangay.
func (f RegionFilter) Allows(region string) bool {
	if f.All {
		return true
	}
	for _, r := range f.Regions {
		if r == region {
			return true
		}
	}
	return false
}

// Selector renders the filter as a document-store selector on the
// given field. An unrestricted filter contributes no constraint.
func (f RegionFilter) Selector(field string) bson.M {
	if f.All {
		return bson.M{}
	}
	if len(f.Regions) == 1 {
		return bson.M{field: f.Regions[0]}
	}
	return bson.M{field: bson.M{"$in": f.Regions}}
}
