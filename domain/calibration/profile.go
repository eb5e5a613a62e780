// Package calibration defines the calibrated screen layout used by the automation flows.
package calibration

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cabal-assist/domain/screen"
)

// DefaultDelayMs is the action delay a fresh profile starts with.
const DefaultDelayMs = 1000

// DefaultProfileName is used when no profile name is configured.
const DefaultProfileName = "default"

// Role names a calibrated button.
type Role string

const (
	RoleAutoRefill Role = "auto_refill"
	RoleRegister   Role = "register"
	RoleYes        Role = "yes"
	RolePage2      Role = "page_2"
	RolePage3      Role = "page_3"
	RolePage4      Role = "page_4"
	RoleArrowRight Role = "arrow_right"
	RoleImprint    Role = "imprint"
	RoleApply      Role = "apply"
	RoleChange     Role = "change"
)

// Roles lists every button role in calibration order.
func Roles() []Role {
	return []Role{
		RoleAutoRefill, RoleRegister, RoleYes,
		RolePage2, RolePage3, RolePage4, RoleArrowRight,
		RoleImprint, RoleApply, RoleChange,
	}
}

// Label returns a human-readable name for the role.
func (r Role) Label() string {
	switch r {
	case RoleAutoRefill:
		return "Auto Refill button"
	case RoleRegister:
		return "Register button"
	case RoleYes:
		return "Yes button"
	case RolePage2:
		return "Page 2 button"
	case RolePage3:
		return "Page 3 button"
	case RolePage4:
		return "Page 4 button"
	case RoleArrowRight:
		return "Arrow Right button"
	case RoleImprint:
		return "Imprint button"
	case RoleApply:
		return "Apply button"
	case RoleChange:
		return "Change button"
	default:
		return string(r)
	}
}

// Area names a calibrated capture region.
type Area string

const (
	AreaCollectionTabs  Area = "collection_tabs"
	AreaDungeonList     Area = "dungeon_list"
	AreaCollectionItems Area = "collection_items"
	AreaStellarText     Area = "stellar_text"
	AreaArrivalText     Area = "arrival_text"
)

// Areas lists every capture area in calibration order.
func Areas() []Area {
	return []Area{AreaCollectionTabs, AreaDungeonList, AreaCollectionItems, AreaStellarText, AreaArrivalText}
}

// Label returns a human-readable name for the area.
func (a Area) Label() string {
	switch a {
	case AreaCollectionTabs:
		return "Collection tabs area"
	case AreaDungeonList:
		return "Dungeon list area"
	case AreaCollectionItems:
		return "Collection items area"
	case AreaStellarText:
		return "Stellar text area"
	case AreaArrivalText:
		return "Arrival skill text area"
	default:
		return string(a)
	}
}

// Profile is a named set of calibrated buttons and areas plus the action delay.
// Buttons are stored window-relative; areas are stored in absolute coordinates.
type Profile struct {
	// Name identifies the profile in storage
	Name string

	// Buttons maps a role to its window-relative click point
	Buttons map[Role]screen.Point

	// Areas maps an area to its absolute capture region
	Areas map[Area]screen.Region

	// DelayMs is the delay applied after each action; 0 disables delays
	DelayMs int

	// UpdatedAt is set by the service on every save
	UpdatedAt time.Time
}

// NewProfile creates an empty profile with the default delay.
func NewProfile(name string) *Profile {
	return &Profile{
		Name:    name,
		Buttons: make(map[Role]screen.Point),
		Areas:   make(map[Area]screen.Region),
		DelayMs: DefaultDelayMs,
	}
}

// Button returns the calibrated point for a role.
func (p *Profile) Button(role Role) (screen.Point, bool) {
	pt, ok := p.Buttons[role]
	return pt, ok
}

// Area returns the calibrated region for an area.
func (p *Profile) Area(area Area) (screen.Region, bool) {
	r, ok := p.Areas[area]
	if !ok || !r.Valid() {
		return screen.Region{}, false
	}
	return r, true
}

// SetButton records the point for a role.
func (p *Profile) SetButton(role Role, pt screen.Point) {
	if p.Buttons == nil {
		p.Buttons = make(map[Role]screen.Point)
	}
	p.Buttons[role] = pt
}

// SetArea records the region for an area.
func (p *Profile) SetArea(area Area, r screen.Region) error {
	if !r.Valid() {
		return fmt.Errorf("invalid region %v for %s", r, area)
	}
	if p.Areas == nil {
		p.Areas = make(map[Area]screen.Region)
	}
	p.Areas[area] = r
	return nil
}

// Delay returns the configured delay as a duration.
func (p *Profile) Delay() time.Duration {
	if p.DelayMs <= 0 {
		return 0
	}
	return time.Duration(p.DelayMs) * time.Millisecond
}

// Missing returns the labels of the required roles and areas that are not set.
func (p *Profile) Missing(roles []Role, areas []Area) []string {
	var missing []string
	for _, a := range areas {
		if _, ok := p.Area(a); !ok {
			missing = append(missing, a.Label())
		}
	}
	for _, r := range roles {
		if _, ok := p.Button(r); !ok {
			missing = append(missing, r.Label())
		}
	}
	return missing
}

// Require returns an IncompleteError when any required role or area is missing.
func (p *Profile) Require(roles []Role, areas []Area) error {
	if missing := p.Missing(roles, areas); len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}
	return nil
}

// Clone creates a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	clone := &Profile{
		Name:      p.Name,
		Buttons:   make(map[Role]screen.Point, len(p.Buttons)),
		Areas:     make(map[Area]screen.Region, len(p.Areas)),
		DelayMs:   p.DelayMs,
		UpdatedAt: p.UpdatedAt,
	}
	for k, v := range p.Buttons {
		clone.Buttons[k] = v
	}
	for k, v := range p.Areas {
		clone.Areas[k] = v
	}
	return clone
}

// IncompleteError reports calibration entries that must be set before a run.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	missing := append([]string(nil), e.Missing...)
	sort.Strings(missing)
	return "please set: " + strings.Join(missing, ", ")
}
