package arcgis

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/kilianp07/telework/config"
	"github.com/kilianp07/telework/infra/logger"
)

// MockMatch is the geocoder answer for an address registered on MockServer.
type MockMatch struct {
	X, Y      float64
	Score     float64
	MatchAddr string
}

// MockServer emulates the ArcGIS endpoints used by Client so that the
// pipeline can run without network access.
type MockServer struct {
	srv *httptest.Server
	log logger.Logger

	mu sync.Mutex
	// Token is the only token accepted. Empty accepts any token.
	Token string
	// RejectTokens answers that many authenticated requests with a 498
	// envelope before accepting tokens again.
	RejectTokens int
	// Suggested is returned as SuggestedBatchSize when positive.
	Suggested int
	// Matches maps upper-cased street addresses to geocoder candidates.
	// Unknown addresses come back unmatched.
	Matches map[string]MockMatch
	// TravelModes maps travel mode names to their JSON definitions.
	TravelModes map[string]string
	// PendingPolls is the number of polls answered with esriJobExecuting.
	PendingPolls int
	// FinalStatus overrides esriJobSucceeded as the terminal status.
	FinalStatus string
	// NoAnalysis removes the analysis helper from portals/self.
	NoAnalysis bool

	GeocodeRequests int
	GeocodeRecords  int
	SubmitRequests  int
	Polls           int
	TokensRejected  int
	LastTravelMode  string

	origins      FeatureCollection
	destinations FeatureCollection
}

// NewMockServer starts a mock with a single "Driving Distance" travel mode.
func NewMockServer() *MockServer {
	m := &MockServer{
		log:     logger.New("arcgis-server-mock"),
		Matches: map[string]MockMatch{},
		TravelModes: map[string]string{
			"Driving Distance": `{"id":"FEgifRtFndKNcJMJ","name":"Driving Distance","impedanceAttributeName":"Kilometers"}`,
		},
	}
	m.srv = httptest.NewServer(m.routes())
	return m
}

// URL returns the base URL of the mock.
func (m *MockServer) URL() string { return m.srv.URL }

// Close shuts the mock down.
func (m *MockServer) Close() { m.srv.Close() }

// Config returns an ArcGIS configuration pointing every endpoint at the
// mock.
func (m *MockServer) Config() config.ArcGISConfig {
	cfg := config.ArcGISConfig{
		AuthMode:      config.AuthUser,
		Username:      "mock",
		PortalURL:     m.srv.URL,
		GeocodeURL:    m.srv.URL + "/geocode",
		RouteUtilsURL: m.srv.URL + "/utilities",
	}
	cfg.SetDefaults()
	return cfg
}

// Configure applies fn to the mock while holding its lock.
func (m *MockServer) Configure(fn func(m *MockServer)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m)
}

// MockStats counts the requests served by a MockServer.
type MockStats struct {
	GeocodeRequests int
	GeocodeRecords  int
	SubmitRequests  int
	Polls           int
	TokensRejected  int
	LastTravelMode  string
}

// Stats returns a snapshot of the request counters.
func (m *MockServer) Stats() MockStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MockStats{
		GeocodeRequests: m.GeocodeRequests,
		GeocodeRecords:  m.GeocodeRecords,
		SubmitRequests:  m.SubmitRequests,
		Polls:           m.Polls,
		TokensRejected:  m.TokensRejected,
		LastTravelMode:  m.LastTravelMode,
	}
}

// Match registers a geocoder candidate for street.
func (m *MockServer) Match(street string, x, y, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Matches[strings.ToUpper(strings.TrimSpace(street))] = MockMatch{X: x, Y: y, Score: score, MatchAddr: street}
}

func (m *MockServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/geocode", m.handleServiceInfo)
	mux.HandleFunc("/geocode/geocodeAddresses", m.authed(m.handleGeocode))
	mux.HandleFunc("/sharing/rest/generateToken", m.handleGenerateToken)
	mux.HandleFunc("/sharing/rest/portals/self", m.authed(m.handlePortal))
	mux.HandleFunc("/utilities/GetTravelModes/execute", m.authed(m.handleTravelModes))
	mux.HandleFunc("/analysis/ConnectOriginsToDestinations/submitJob", m.authed(m.handleSubmit))
	mux.HandleFunc("/analysis/ConnectOriginsToDestinations/jobs/", m.authed(m.handleJob))
	return mux
}

func (m *MockServer) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		m.mu.Lock()
		reject := m.RejectTokens > 0
		if reject {
			m.RejectTokens--
			m.TokensRejected++
		}
		bad := m.Token != "" && r.Form.Get("token") != m.Token
		m.mu.Unlock()
		if reject || bad {
			m.writeJSON(w, map[string]any{"error": APIError{Code: CodeInvalidToken, Message: "Invalid token."}})
			return
		}
		next(w, r)
	}
}

// handleGenerateToken issues Token, or "mock-token" when any token is
// accepted, to every user with a non-empty password.
func (m *MockServer) handleGenerateToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.Form.Get("username") == "" || r.Form.Get("password") == "" {
		m.writeJSON(w, map[string]any{"error": APIError{Code: 400, Message: "Unable to generate token."}})
		return
	}
	m.mu.Lock()
	tok := m.Token
	m.mu.Unlock()
	if tok == "" {
		tok = "mock-token"
	}
	m.writeJSON(w, map[string]any{"token": tok, "expires": time.Now().Add(time.Hour).UnixMilli()})
}

func (m *MockServer) handleServiceInfo(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	n := m.Suggested
	m.mu.Unlock()
	info := map[string]any{"currentVersion": 11.3}
	if n > 0 {
		info["SuggestedBatchSize"] = n
		info["MaxBatchSize"] = n * 2
	}
	m.writeJSON(w, info)
}

func (m *MockServer) handleGeocode(w http.ResponseWriter, r *http.Request) {
	var payload addressRecords
	if err := json.Unmarshal([]byte(r.Form.Get("addresses")), &payload); err != nil {
		m.writeJSON(w, map[string]any{"error": APIError{Code: 400, Message: "Unable to complete operation.", Details: []string{err.Error()}}})
		return
	}
	m.mu.Lock()
	m.GeocodeRequests++
	m.GeocodeRecords += len(payload.Records)
	locations := make([]map[string]any, 0, len(payload.Records))
	for _, rec := range payload.Records {
		a := rec.Attributes
		match, ok := m.Matches[strings.ToUpper(strings.TrimSpace(a.Address))]
		attrs := map[string]any{"ResultID": a.ObjectID, "Status": "U", "Score": 0, "Match_addr": ""}
		loc := map[string]any{"address": "", "score": 0, "attributes": attrs}
		if ok {
			full := fmt.Sprintf("%s, %s, %s, %s", match.MatchAddr, a.City, a.Region, a.Postal)
			attrs["Status"] = "M"
			attrs["Score"] = match.Score
			attrs["Match_addr"] = full
			loc["address"] = full
			loc["score"] = match.Score
			loc["location"] = PointGeometry{X: match.X, Y: match.Y}
		}
		locations = append(locations, loc)
	}
	m.mu.Unlock()
	m.writeJSON(w, map[string]any{
		"spatialReference": SpatialReference{WKID: WGS84},
		"locations":        locations,
	})
}

func (m *MockServer) handlePortal(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	none := m.NoAnalysis
	m.mu.Unlock()
	helpers := map[string]any{}
	if !none {
		helpers["analysis"] = map[string]string{"url": m.srv.URL + "/analysis"}
	}
	m.writeJSON(w, map[string]any{"id": "mock", "helperServices": helpers})
}

func (m *MockServer) handleTravelModes(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	features := make([]Feature, 0, len(m.TravelModes))
	for name, def := range m.TravelModes {
		features = append(features, Feature{Attributes: map[string]any{"Name": name, "TravelMode": def}})
	}
	m.mu.Unlock()
	m.writeJSON(w, map[string]any{"results": []map[string]any{
		{"paramName": "supportedTravelModes", "value": map[string]any{"features": features}},
		{"paramName": "defaultTravelMode", "value": ""},
	}})
}

func (m *MockServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var origins, destinations FeatureCollection
	if err := json.Unmarshal([]byte(r.Form.Get("originsLayer")), &origins); err != nil {
		m.writeJSON(w, map[string]any{"error": APIError{Code: 400, Message: "Invalid originsLayer"}})
		return
	}
	if err := json.Unmarshal([]byte(r.Form.Get("destinationsLayer")), &destinations); err != nil {
		m.writeJSON(w, map[string]any{"error": APIError{Code: 400, Message: "Invalid destinationsLayer"}})
		return
	}
	m.mu.Lock()
	m.SubmitRequests++
	m.Polls = 0
	m.origins = origins
	m.destinations = destinations
	m.LastTravelMode = r.Form.Get("measurementType")
	m.mu.Unlock()
	m.writeJSON(w, map[string]any{"jobId": "jmock", "jobStatus": JobSubmitted})
}

func (m *MockServer) handleJob(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/analysis/ConnectOriginsToDestinations/jobs/")
	if strings.HasSuffix(rest, "/results/routesLayer") {
		m.writeJSON(w, map[string]any{
			"paramName": "routesLayer",
			"value": map[string]any{"featureSet": FeatureSet{
				GeometryType:     "esriGeometryPolyline",
				SpatialReference: SpatialReference{WKID: WGS84},
				Features:         m.routeFeatures(),
			}},
		})
		return
	}
	m.mu.Lock()
	m.Polls++
	status := JobExecuting
	if m.Polls > m.PendingPolls {
		status = JobSucceeded
		if m.FinalStatus != "" {
			status = m.FinalStatus
		}
	}
	m.mu.Unlock()
	resp := map[string]any{"jobId": rest, "jobStatus": status, "messages": []map[string]string{}}
	if status == JobSucceeded {
		resp["results"] = map[string]any{"routesLayer": map[string]string{"paramUrl": "results/routesLayer"}}
	}
	if status == JobFailed {
		resp["messages"] = []map[string]string{{"type": "esriJobMessageTypeError", "description": "Failed to execute."}}
	}
	m.writeJSON(w, resp)
}

// routeFeatures pairs origins and destinations by route ID. Miles are the
// great circle distance and minutes assume 40 mph.
func (m *MockServer) routeFeatures() []Feature {
	m.mu.Lock()
	defer m.mu.Unlock()
	dest := map[string]Feature{}
	for _, f := range m.destinations.FeatureSet.Features {
		dest[f.String(RouteIDField)] = f
	}
	out := make([]Feature, 0, len(m.origins.FeatureSet.Features))
	for _, o := range m.origins.FeatureSet.Features {
		id := o.String(RouteIDField)
		d, ok := dest[id]
		if !ok {
			continue
		}
		miles := haversineMiles(o.Float("Lat"), o.Float("Lon"), d.Float("Lat"), d.Float("Lon"))
		out = append(out, Feature{Attributes: map[string]any{
			"RouteName":                  id,
			"Total_Miles":                miles,
			"Total_Minutes":              miles * 1.5,
			"From_Lat":                   o.Float("Lat"),
			"From_Lon":                   o.Float("Lon"),
			"To_Lat":                     d.Float("Lat"),
			"To_Lon":                     d.Float("Lon"),
			"From_Employee_Address_Type": o.String("Employee_Address_Type"),
			"To_Employee_Address_Type":   d.String("Employee_Address_Type"),
		}})
	}
	return out
}

func (m *MockServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		m.log.Errorf("encode response: %v", err)
	}
}

func haversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusMiles = 3958.8
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(a))
}
