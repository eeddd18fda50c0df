// Command erp-backend is a stand-in for the ERP registration API used for
// local development and the e2e suite. It accepts the tokens listed in
// FAKE_ERP_TOKENS (comma separated, default "demo-token") and serves a small
// Turkish location hierarchy.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

type state struct {
	StateCode        string `json:"stateCode"`
	StateDescription string `json:"stateDescription"`
	Cities           []city `json:"cities"`
}

type city struct {
	CityCode        string     `json:"cityCode"`
	CityDescription string     `json:"cityDescription"`
	Districts       []district `json:"districts"`
}

type district struct {
	DistrictCode        string `json:"districtCode"`
	DistrictDescription string `json:"districtDescription"`
}

var hierarchyTR = []state{
	{StateCode: "34", StateDescription: "İstanbul", Cities: []city{
		{CityCode: "34-KDK", CityDescription: "Kadıköy", Districts: []district{
			{DistrictCode: "34-KDK-MDA", DistrictDescription: "Moda"},
			{DistrictCode: "34-KDK-FNR", DistrictDescription: "Fenerbahçe"},
		}},
		{CityCode: "34-BSK", CityDescription: "Beşiktaş", Districts: []district{
			{DistrictCode: "34-BSK-ORT", DistrictDescription: "Ortaköy"},
		}},
	}},
	{StateCode: "06", StateDescription: "Ankara", Cities: []city{
		{CityCode: "06-CNK", CityDescription: "Çankaya"},
	}},
}

type server struct {
	tokens map[string]bool

	mu   sync.Mutex
	next int
}

func main() {
	addr := os.Getenv("FAKE_ERP_ADDR")
	if addr == "" {
		addr = ":9090"
	}
	s := &server{tokens: map[string]bool{}}
	raw := os.Getenv("FAKE_ERP_TOKENS")
	if raw == "" {
		raw = "demo-token"
	}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			s.tokens[t] = true
		}
	}

	r := chi.NewRouter()
	r.Get("/validate-token/{token}", s.validateToken)
	r.Get("/location-hierarchy", s.requireToken(s.locationHierarchy))
	r.Post("/register", s.requireToken(s.registerCustomer))
	r.Post("/register/address", s.requireToken(s.accepted))
	r.Post("/register/communication", s.requireToken(s.accepted))
	r.Post("/register/contact", s.requireToken(s.accepted))

	log.Printf("fake ERP backend listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *server) validateToken(w http.ResponseWriter, r *http.Request) {
	if s.tokens[chi.URLParam(r, "token")] {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "unknown registration token"})
}

func (s *server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.tokens[r.URL.Query().Get("token")] {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "invalid token"})
			return
		}
		next(w, r)
	}
}

func (s *server) locationHierarchy(w http.ResponseWriter, r *http.Request) {
	states := []state{}
	if strings.EqualFold(r.URL.Query().Get("countryCode"), "TR") {
		states = hierarchyTR
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"states": states}})
}

func (s *server) registerCustomer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerName string `json:"customerName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.CustomerName) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"success": false, "message": "customerName is required"})
		return
	}
	s.mu.Lock()
	s.next++
	code := fmt.Sprintf("C%06d", s.next)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{"customerCode": code}})
}

func (s *server) accepted(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
