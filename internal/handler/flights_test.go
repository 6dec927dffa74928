package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sheriph/chat-bot/internal/amadeus"
	"github.com/sheriph/chat-bot/internal/cache"
	"github.com/sheriph/chat-bot/internal/models"
)

type fakeSearcher struct {
	response *models.OfferResponse
	err      error
	lastReq  amadeus.SearchRequest
}

func (f *fakeSearcher) SearchFlightOffers(ctx context.Context, req amadeus.SearchRequest) (*models.OfferResponse, []byte, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, nil, f.err
	}
	raw, _ := json.Marshal(f.response)
	return f.response, raw, nil
}

type failingStore struct{}

func (failingStore) Put(ctx context.Context, env cache.Envelope) (string, error) {
	return "", models.ErrCachePersistence
}

func (failingStore) Get(ctx context.Context, handle string) (cache.Envelope, error) {
	return cache.Envelope{}, models.ErrNotFoundOrExpired
}

func (failingStore) Close() error { return nil }

func fixtureOffers() *models.OfferResponse {
	segment := func(carrier, dep, arr, at string) models.Segment {
		return models.Segment{
			Departure:   models.FlightPoint{IataCode: dep, At: at},
			Arrival:     models.FlightPoint{IataCode: arr},
			CarrierCode: carrier,
		}
	}

	return &models.OfferResponse{
		Data: []models.FlightOffer{
			{
				ID:    "1",
				Price: models.Price{Currency: "USD", Total: "600.00"},
				Itineraries: []models.Itinerary{{
					Duration: "PT6H30M",
					Segments: []models.Segment{segment("BA", "LOS", "LHR", "2025-03-10T09:00:00")},
				}},
			},
			{
				ID:    "2",
				Price: models.Price{Currency: "USD", Total: "450.00"},
				Itineraries: []models.Itinerary{{
					Duration: "PT9H",
					Segments: []models.Segment{
						segment("AF", "LOS", "CDG", "2025-03-10T07:00:00"),
						segment("AF", "CDG", "LHR", "2025-03-10T14:00:00"),
					},
				}},
			},
			{
				ID:    "3",
				Price: models.Price{Currency: "USD", Total: "500.00"},
				Itineraries: []models.Itinerary{{
					Duration: "PT6H10M",
					Segments: []models.Segment{segment("VS", "LOS", "LHR", "2025-03-10T11:30:00")},
				}},
			},
		},
		Dictionaries: &models.Dictionaries{
			Carriers: map[string]string{"BA": "BRITISH AIRWAYS", "AF": "AIR FRANCE", "VS": "VIRGIN ATLANTIC"},
		},
	}
}

func doSearch(t *testing.T, h *FlightHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flights/search", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Search(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestSearchIssuesHandleAndCookie(t *testing.T) {
	store := cache.NewMemoryStore()
	h := NewFlightHandler(&fakeSearcher{response: fixtureOffers()}, store, nil, time.Second)

	rec := doSearch(t, h, `{"origin":"LOS","destination":"LHR","departure_date":"2025-03-10","passengers":{"adults":1}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp models.SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.SearchID == "" {
		t.Error("no search handle issued")
	}
	if resp.Cache == nil || resp.Cache.TTLSeconds != 1800 {
		t.Errorf("cache meta = %+v", resp.Cache)
	}
	// Default sort is cheapest.
	if len(resp.Offers) != 3 || resp.Offers[0].ID != "2" {
		t.Errorf("unexpected offer order: %+v", resp.Offers)
	}

	cookie := findCookie(rec, SearchCookie)
	if cookie == nil {
		t.Fatal("search cookie not set")
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("cookie flags: %+v", cookie)
	}
	if cookie.MaxAge > int(cache.ResultTTL/time.Second) {
		t.Errorf("cookie outlives the cache entry: MaxAge=%d", cookie.MaxAge)
	}
	if cookie.Value != resp.SearchID {
		t.Error("cookie and search_id disagree")
	}
}

func TestSearchValidationFailureNeverReachesUpstream(t *testing.T) {
	searcher := &fakeSearcher{response: fixtureOffers()}
	h := NewFlightHandler(searcher, cache.NewMemoryStore(), nil, time.Second)

	rec := doSearch(t, h, `{"origin":"LAGOS","destination":"LHR","departure_date":"2025-03-10"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp models.ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error != "validation_error" {
		t.Errorf("error = %q", resp.Error)
	}
	if searcher.lastReq.CurrencyCode != "" {
		t.Error("upstream was called despite a validation failure")
	}
}

func TestSearchDegradesWhenCacheWriteFails(t *testing.T) {
	h := NewFlightHandler(&fakeSearcher{response: fixtureOffers()}, failingStore{}, nil, time.Second)

	rec := doSearch(t, h, `{"origin":"LOS","destination":"LHR","departure_date":"2025-03-10"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite the cache failure", rec.Code)
	}

	var resp models.SearchResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.SearchID != "" || resp.Cache != nil {
		t.Error("handle issued even though the cache write failed")
	}
	if len(resp.Offers) != 3 {
		t.Errorf("offers = %d, want 3", len(resp.Offers))
	}
	if len(resp.Warnings) == 0 {
		t.Error("degraded mode not surfaced as a warning")
	}
	if findCookie(rec, SearchCookie) != nil {
		t.Error("cookie set even though no handle exists")
	}
}

func TestSearchMapsUpstreamErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"auth", &models.AuthError{Err: context.DeadlineExceeded}, http.StatusBadGateway, "auth_failed"},
		{"rejected", &models.UpstreamRejectedError{Status: 400, Detail: "bad segment"}, http.StatusBadGateway, "upstream_rejected"},
		{"transient", &models.UpstreamTransientError{Status: 503}, http.StatusServiceUnavailable, "upstream_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewFlightHandler(&fakeSearcher{err: tt.err}, cache.NewMemoryStore(), nil, time.Second)
			rec := doSearch(t, h, `{"origin":"LOS","destination":"LHR","departure_date":"2025-03-10"}`)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var resp models.ErrorResponse
			json.Unmarshal(rec.Body.Bytes(), &resp)
			if resp.Error != tt.wantErr {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantErr)
			}
		})
	}
}

func TestResultsFilterSortPage(t *testing.T) {
	store := cache.NewMemoryStore()
	h := NewFlightHandler(&fakeSearcher{response: fixtureOffers()}, store, nil, time.Second)

	rec := doSearch(t, h, `{"origin":"LOS","destination":"LHR","departure_date":"2025-03-10"}`)
	cookie := findCookie(rec, SearchCookie)
	if cookie == nil {
		t.Fatal("search cookie not set")
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/flights/results?sortBy=fastest&stops=nonstop&page=1&limit=5", nil)
	req.AddCookie(&http.Cookie{Name: SearchCookie, Value: cookie.Value})
	followUp := httptest.NewRecorder()
	if err := h.Results(e.NewContext(req, followUp)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if followUp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", followUp.Code, followUp.Body.String())
	}

	var resp models.ResultsResponse
	if err := json.Unmarshal(followUp.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	// Offer 2 is one-stop so only the two nonstops survive, fastest first.
	if len(resp.Offers) != 2 {
		t.Fatalf("offers = %d, want 2", len(resp.Offers))
	}
	if resp.Offers[0].ID != "3" || resp.Offers[1].ID != "1" {
		t.Errorf("order = [%s %s], want [3 1]", resp.Offers[0].ID, resp.Offers[1].ID)
	}
	for _, o := range resp.Offers {
		for _, it := range o.Itineraries {
			if it.Stops() != 0 {
				t.Errorf("offer %s is not nonstop", o.ID)
			}
		}
	}
	if resp.Pagination.Total != 2 || resp.Pagination.TotalPages != 1 {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
	if resp.Cache.Stale {
		t.Error("fresh results flagged stale")
	}
}

func TestResultsWithUnknownHandle(t *testing.T) {
	h := NewFlightHandler(&fakeSearcher{response: fixtureOffers()}, cache.NewMemoryStore(), nil, time.Second)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/flights/results", nil)
	req.AddCookie(&http.Cookie{Name: SearchCookie, Value: "long-gone"})
	rec := httptest.NewRecorder()
	if err := h.Results(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp models.ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error != "search_expired" {
		t.Errorf("error = %q, want search_expired", resp.Error)
	}
}

func TestResultsAcceptsQueryParamHandle(t *testing.T) {
	store := cache.NewMemoryStore()
	h := NewFlightHandler(&fakeSearcher{response: fixtureOffers()}, store, nil, time.Second)

	rec := doSearch(t, h, `{"origin":"LOS","destination":"LHR","departure_date":"2025-03-10"}`)
	var search models.SearchResponse
	json.Unmarshal(rec.Body.Bytes(), &search)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/flights/results?searchId="+search.SearchID, nil)
	followUp := httptest.NewRecorder()
	if err := h.Results(e.NewContext(req, followUp)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if followUp.Code != http.StatusOK {
		t.Fatalf("status = %d", followUp.Code)
	}
}

func TestResultsMarkdownRendersPage(t *testing.T) {
	store := cache.NewMemoryStore()
	h := NewFlightHandler(&fakeSearcher{response: fixtureOffers()}, store, nil, time.Second)

	rec := doSearch(t, h, `{"origin":"LOS","destination":"LHR","departure_date":"2025-03-10"}`)
	cookie := findCookie(rec, SearchCookie)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/flights/results/markdown?sortBy=cheapest", nil)
	req.AddCookie(&http.Cookie{Name: SearchCookie, Value: cookie.Value})
	followUp := httptest.NewRecorder()
	if err := h.ResultsMarkdown(e.NewContext(req, followUp)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	body := followUp.Body.String()
	if !strings.Contains(body, "USD 450.00") {
		t.Errorf("markdown missing cheapest price:\n%s", body)
	}
	if !strings.Contains(body, "LOS → CDG → LHR") {
		t.Errorf("markdown missing route line:\n%s", body)
	}
	if !strings.Contains(body, "Air France") {
		t.Errorf("markdown did not resolve carrier names:\n%s", body)
	}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	res := http.Response{Header: rec.Header()}
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
