package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sheriph/chat-bot/internal/amadeus"
	"github.com/sheriph/chat-bot/internal/cache"
	"github.com/sheriph/chat-bot/internal/filter"
	"github.com/sheriph/chat-bot/internal/models"
	"github.com/sheriph/chat-bot/internal/obs"
	"github.com/sheriph/chat-bot/internal/present"
)

// SearchCookie carries the result-cache handle between the search call and
// follow-up filter/page calls. Non-browser callers can pass the handle as a
// searchId query parameter instead.
const SearchCookie = "flight_search_id"

// OfferSearcher is what the handler needs from the flight-provider client.
type OfferSearcher interface {
	SearchFlightOffers(ctx context.Context, req amadeus.SearchRequest) (*models.OfferResponse, []byte, error)
}

type FlightHandler struct {
	searcher OfferSearcher
	store    cache.Store
	metrics  *obs.Metrics
	timeout  time.Duration
	now      func() time.Time
}

func NewFlightHandler(searcher OfferSearcher, store cache.Store, metrics *obs.Metrics, timeout time.Duration) *FlightHandler {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &FlightHandler{
		searcher: searcher,
		store:    store,
		metrics:  metrics,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Search runs a fresh flight search, persists the raw result set and issues
// the handle cookie. A cache write failure degrades instead of failing: the
// offers still go back, just without a handle.
func (h *FlightHandler) Search(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	var spec models.TripSpec
	if err := c.Bind(&spec); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if err := spec.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	h.metrics.IncSearches()

	wireReq := amadeus.BuildSearchRequest(spec)
	offers, raw, err := h.searcher.SearchFlightOffers(ctx, wireReq)
	if err != nil {
		return writeUpstreamError(c, err)
	}

	resp := models.SearchResponse{
		Trip:         spec,
		Dictionaries: offers.Dictionaries,
	}

	env := cache.NewEnvelope(h.now(), &wireReq, raw)
	handle, putErr := h.store.Put(ctx, env)
	if putErr != nil {
		log.Printf("result cache write failed: %v", putErr)
		resp.Warnings = append(resp.Warnings, "Results could not be cached; filtering across requests is unavailable for this search.")
	} else {
		resp.SearchID = handle
		meta := env.Meta(h.now())
		resp.Cache = &meta
		setSearchCookie(c, handle)
	}

	criteria := criteriaFromQuery(c)
	resp.Offers, resp.Pagination = filter.Apply(offers.Data, criteria)

	return c.JSON(http.StatusOK, resp)
}

// Results filters and pages a previously cached result set.
func (h *FlightHandler) Results(c echo.Context) error {
	env, ok, err := h.loadEnvelope(c)
	if !ok {
		return err
	}

	payload, err := decodeEnvelope(env)
	if err != nil {
		return c.JSON(http.StatusNotFound, expiredResponse())
	}

	offers, pagination := filter.Apply(payload.Data, criteriaFromQuery(c))

	return c.JSON(http.StatusOK, models.ResultsResponse{
		Pagination:   pagination,
		Cache:        env.Meta(h.now()),
		Dictionaries: payload.Dictionaries,
		Offers:       offers,
	})
}

// ResultsMarkdown is the chat-tool variant of Results: same pipeline,
// rendered as markdown for the LLM to splice into its reply.
func (h *FlightHandler) ResultsMarkdown(c echo.Context) error {
	env, ok, err := h.loadEnvelope(c)
	if !ok {
		return err
	}

	payload, err := decodeEnvelope(env)
	if err != nil {
		return c.JSON(http.StatusNotFound, expiredResponse())
	}

	offers, pagination := filter.Apply(payload.Data, criteriaFromQuery(c))

	text := present.Offers(offers, payload.Dictionaries, pagination)
	if env.Stale(h.now()) {
		text += "\nNote: these results are over 30 minutes old; prices may have changed. Search again for current fares.\n"
	}

	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(text))
}

// loadEnvelope resolves the handle and fetches the cached envelope. When ok
// is false the error response has already been written and the caller must
// return err as-is.
func (h *FlightHandler) loadEnvelope(c echo.Context) (env cache.Envelope, ok bool, err error) {
	handle := ""
	if cookie, cerr := c.Cookie(SearchCookie); cerr == nil {
		handle = cookie.Value
	}
	if handle == "" {
		handle = c.QueryParam("searchId")
	}
	if handle == "" {
		h.metrics.IncCacheMisses()
		return cache.Envelope{}, false, c.JSON(http.StatusNotFound, expiredResponse())
	}

	env, getErr := h.store.Get(c.Request().Context(), handle)
	if getErr != nil {
		h.metrics.IncCacheMisses()
		if errors.Is(getErr, models.ErrNotFoundOrExpired) {
			return cache.Envelope{}, false, c.JSON(http.StatusNotFound, expiredResponse())
		}
		return cache.Envelope{}, false, c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "cache_error",
			Message: "Failed to read cached results: " + getErr.Error(),
			Code:    http.StatusInternalServerError,
		})
	}

	h.metrics.IncCacheHits()
	return env, true, nil
}

func decodeEnvelope(env cache.Envelope) (*models.OfferResponse, error) {
	var payload models.OfferResponse
	if err := json.Unmarshal(env.Response, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func expiredResponse() models.ErrorResponse {
	return models.ErrorResponse{
		Error:   "search_expired",
		Message: "Your previous search is no longer available. Please search again.",
		Code:    http.StatusNotFound,
	}
}

func setSearchCookie(c echo.Context, handle string) {
	c.SetCookie(&http.Cookie{
		Name:     SearchCookie,
		Value:    handle,
		Path:     "/",
		MaxAge:   int(cache.ResultTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func criteriaFromQuery(c echo.Context) filter.Criteria {
	criteria := filter.Criteria{
		Stops:  c.QueryParam("stops"),
		SortBy: c.QueryParam("sortBy"),
	}

	if airlines := strings.TrimSpace(c.QueryParam("airlines")); airlines != "" {
		for _, code := range strings.Split(airlines, ",") {
			if code = strings.TrimSpace(code); code != "" {
				criteria.Airlines = append(criteria.Airlines, code)
			}
		}
	}

	criteria.Page, _ = strconv.Atoi(c.QueryParam("page"))
	criteria.PageSize, _ = strconv.Atoi(c.QueryParam("limit"))

	return criteria
}

// writeUpstreamError maps the pipeline's error taxonomy onto HTTP codes so
// the chat layer can pick a user-facing message without inspecting raw
// provider payloads.
func writeUpstreamError(c echo.Context, err error) error {
	var authErr *models.AuthError
	var rejected *models.UpstreamRejectedError
	var transient *models.UpstreamTransientError

	switch {
	case errors.As(err, &authErr):
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "auth_failed",
			Message: "Could not authenticate with the flight provider.",
			Code:    http.StatusBadGateway,
		})
	case errors.As(err, &rejected):
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "upstream_rejected",
			Message: "The flight provider rejected the search: " + rejected.Detail,
			Code:    http.StatusBadGateway,
		})
	case errors.As(err, &transient):
		return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "upstream_unavailable",
			Message: "The flight provider is temporarily unavailable. Please try again.",
			Code:    http.StatusServiceUnavailable,
		})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{
			Error:   "timeout",
			Message: "The flight search took too long. Please try again.",
			Code:    http.StatusGatewayTimeout,
		})
	default:
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "search_error",
			Message: "Failed to search flights: " + err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}
}
