package location

// Node is one entry of the location tree. The root is the country; its
// children are states, then cities, then districts.
type Node struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Children []Node `json:"children,omitempty"`
}

// Level identifies a depth in the hierarchy.
type Level int

const (
	LevelCountry Level = iota
	LevelState
	LevelCity
	LevelDistrict
)

func (l Level) String() string {
	switch l {
	case LevelCountry:
		return "country"
	case LevelState:
		return "state"
	case LevelCity:
		return "city"
	case LevelDistrict:
		return "district"
	default:
		return "unknown"
	}
}

// ParseLevel maps a level name back to a Level.
func ParseLevel(s string) (Level, bool) {
	for l := LevelCountry; l <= LevelDistrict; l++ {
		if l.String() == s {
			return l, true
		}
	}
	return 0, false
}

// Selection is the user's current pick at each level. A non-empty level never
// sits below an empty one once updates go through With.
type Selection struct {
	Country  string `json:"countryCode"`
	State    string `json:"stateCode,omitempty"`
	City     string `json:"cityCode,omitempty"`
	District string `json:"districtCode,omitempty"`
}

// Get returns the code selected at level.
func (s Selection) Get(level Level) string {
	switch level {
	case LevelCountry:
		return s.Country
	case LevelState:
		return s.State
	case LevelCity:
		return s.City
	case LevelDistrict:
		return s.District
	}
	return ""
}

// With sets level to code. When the value actually changes every level
// strictly below it is cleared. A code for a level whose parent is empty is
// ignored.
func (s Selection) With(level Level, code string) Selection {
	if s.Get(level) == code {
		return s
	}
	if code != "" && level > LevelCountry && level <= LevelDistrict && s.Get(level-1) == "" {
		return s
	}
	switch level {
	case LevelCountry:
		s.Country = code
	case LevelState:
		s.State = code
	case LevelCity:
		s.City = code
	case LevelDistrict:
		s.District = code
	default:
		return s
	}
	return OnParentChanged(s, level)
}

// OnParentChanged clears every level strictly below changed.
func OnParentChanged(sel Selection, changed Level) Selection {
	if changed < LevelState {
		sel.State = ""
	}
	if changed < LevelCity {
		sel.City = ""
	}
	if changed < LevelDistrict {
		sel.District = ""
	}
	return sel
}

// ChildrenOf walks path (state code, then city code) down from the country
// root and returns the children found there. Any empty or unknown code along
// the way yields an empty slice.
func ChildrenOf(tree Node, path ...string) []Node {
	current := tree
	for _, code := range path {
		if code == "" {
			return []Node{}
		}
		next, ok := childByCode(current, code)
		if !ok {
			return []Node{}
		}
		current = next
	}
	if current.Children == nil {
		return []Node{}
	}
	return current.Children
}

func childByCode(n Node, code string) (Node, bool) {
	for _, c := range n.Children {
		if c.Code == code {
			return c, true
		}
	}
	return Node{}, false
}

// Dropdowns holds the choices offered at each level for a selection.
type Dropdowns struct {
	States    []Node `json:"states"`
	Cities    []Node `json:"cities"`
	Districts []Node `json:"districts"`
}

// DropdownsFor slices tree for sel. Levels whose parent is unselected are empty.
func DropdownsFor(tree Node, sel Selection) Dropdowns {
	d := Dropdowns{
		States:    ChildrenOf(tree),
		Cities:    []Node{},
		Districts: []Node{},
	}
	if sel.State != "" {
		d.Cities = ChildrenOf(tree, sel.State)
	}
	if sel.State != "" && sel.City != "" {
		d.Districts = ChildrenOf(tree, sel.State, sel.City)
	}
	return d
}
