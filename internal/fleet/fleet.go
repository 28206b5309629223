// Package fleet holds the resource tables the evaluator selects from.
// Tables are static demo data keyed by resource type and are never
// mutated; callers can substitute their own tables for testing or
// from configuration.
package fleet

// Resource statuses. Anything other than StatusAvailable makes a
// resource ineligible for selection.
const (
	StatusAvailable = "available"
	StatusCharging  = "charging"
	StatusBusy      = "busy"
)

// Resource is a single selectable unit: a drone, a vehicle, a machine,
// or a generic operational unit depending on the table it lives in.
type Resource struct {
	ID       string `json:"id"`
	Capacity int    `json:"capacity"` // 0-100 percent
	Status   string `json:"status"`
	Location string `json:"location"`
}

// Table maps a resource type tag ("drone", "vehicle", ...) to its
// resources. Order within a slice is significant: ties on capacity are
// broken by table order.
type Table map[string][]Resource

// fallbackType is used when a requested resource type has no entry.
const fallbackType = "unit"

// Default returns the built-in demo fleet.
func Default() Table {
	return Table{
		"drone": {
			{ID: "RESOURCE-001", Capacity: 95, Status: StatusAvailable, Location: "Base-A"},
			{ID: "RESOURCE-002", Capacity: 45, Status: StatusAvailable, Location: "Base-A"},
			{ID: "RESOURCE-003", Capacity: 85, Status: StatusCharging, Location: "Base-B"},
			{ID: "RESOURCE-004", Capacity: 100, Status: StatusAvailable, Location: "Base-A"},
		},
		"vehicle": {
			{ID: "VEHICLE-001", Capacity: 80, Status: StatusAvailable, Location: "Warehouse-1"},
			{ID: "VEHICLE-002", Capacity: 60, Status: StatusAvailable, Location: "Warehouse-2"},
			{ID: "VEHICLE-003", Capacity: 90, Status: StatusAvailable, Location: "Warehouse-1"},
		},
		"unit": {
			{ID: "UNIT-001", Capacity: 75, Status: StatusAvailable, Location: "Station-A"},
			{ID: "UNIT-002", Capacity: 95, Status: StatusAvailable, Location: "Station-B"},
		},
	}
}

// Resources returns the table entries for a resource type, falling back
// to the generic unit pool for unknown types.
func (t Table) Resources(resourceType string) []Resource {
	if rs, ok := t[resourceType]; ok {
		return rs
	}
	return t[fallbackType]
}

// Select picks the available resource with the highest capacity that
// meets minCapacity. The first maximum in table order wins ties. The
// second return value is false when no resource qualifies; that is a
// normal outcome, not a fault.
func (t Table) Select(resourceType string, minCapacity int) (Resource, bool) {
	var best Resource
	found := false
	for _, r := range t.Resources(resourceType) {
		if r.Status != StatusAvailable || r.Capacity < minCapacity {
			continue
		}
		if !found || r.Capacity > best.Capacity {
			best = r
			found = true
		}
	}
	return best, found
}

// Types returns the resource type tags present in the table.
func (t Table) Types() []string {
	types := make([]string, 0, len(t))
	for name := range t {
		types = append(types, name)
	}
	return types
}
