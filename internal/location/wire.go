package location

import "kayit/internal/backend"

// FromWire builds the tree rooted at countryCode from a backend hierarchy.
func FromWire(countryCode string, resp backend.HierarchyResponse) Node {
	root := Node{Code: countryCode, Name: countryCode, Children: make([]Node, 0, len(resp.States))}
	for _, s := range resp.States {
		state := Node{Code: s.StateCode, Name: s.StateDescription, Children: make([]Node, 0, len(s.Cities))}
		for _, c := range s.Cities {
			city := Node{Code: c.CityCode, Name: c.CityDescription, Children: make([]Node, 0, len(c.Districts))}
			for _, d := range c.Districts {
				city.Children = append(city.Children, Node{Code: d.DistrictCode, Name: d.DistrictDescription})
			}
			state.Children = append(state.Children, city)
		}
		root.Children = append(root.Children, state)
	}
	return root
}
