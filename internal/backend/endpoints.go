package backend

import (
	"net/url"
	"strings"
)

// Operation names one logical backend call.
type Operation string

const (
	OpValidateToken         Operation = "validate_token"
	OpLocationHierarchy     Operation = "location_hierarchy"
	OpRegisterCustomer      Operation = "register_customer"
	OpRegisterAddress       Operation = "register_address"
	OpRegisterCommunication Operation = "register_communication"
	OpRegisterContact       Operation = "register_contact"
)

// Endpoints lists candidate paths per operation, tried in order. A candidate
// answering 404 or 405 passes the call to the next one; any other answer
// ends the search. Paths may contain a {token} placeholder.
type Endpoints map[Operation][]string

// DefaultEndpoints returns the current backend paths followed by the legacy
// customer-prefixed aliases older deployments still serve.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		OpValidateToken:         {"/validate-token/{token}", "/customer/validate-token/{token}"},
		OpLocationHierarchy:     {"/location-hierarchy", "/customer/location-hierarchy"},
		OpRegisterCustomer:      {"/register", "/customer/register"},
		OpRegisterAddress:       {"/register/address", "/customer/register/address"},
		OpRegisterCommunication: {"/register/communication", "/customer/register/communication"},
		OpRegisterContact:       {"/register/contact", "/customer/register/contact"},
	}
}

// Candidates returns the ordered paths for op with token substituted.
func (e Endpoints) Candidates(op Operation, token string) []string {
	paths := e[op]
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, strings.ReplaceAll(p, "{token}", url.PathEscape(token)))
	}
	return out
}

// merge overlays configured candidates on top of the defaults.
func (e Endpoints) merge(override Endpoints) Endpoints {
	out := make(Endpoints, len(e))
	for op, paths := range e {
		out[op] = paths
	}
	for op, paths := range override {
		if len(paths) > 0 {
			out[op] = paths
		}
	}
	return out
}
