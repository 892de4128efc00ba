package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hailgo/hailgo/internal/core/domain"
	"github.com/hailgo/hailgo/internal/pkg/metrics"
)

// ListPlacesHandler returns the full place catalog with offset pagination.
func ListPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		places := deps.Places.List(c.Context())

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(places)
		if offset >= total {
			places = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			places = places[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: places, Pagination: pg})
	}
}

// SearchPlacesHandler performs substring search on place names and addresses.
func SearchPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		limit := c.QueryInt("limit", 20)

		places, err := deps.Places.Search(c.Context(), query, limit)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(places)
	}
}

// parseLatLon reads a required coordinate pair from query parameters.
func parseLatLon(c *fiber.Ctx, latKey, lonKey string) (domain.GeoPoint, error) {
	latStr, lonStr := c.Query(latKey), c.Query(lonKey)
	if latStr == "" || lonStr == "" {
		return domain.GeoPoint{}, errors.New(latKey + " and " + lonKey + " are required")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.GeoPoint{}, errors.New(latKey + " must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return domain.GeoPoint{}, errors.New(lonKey + " must be a number")
	}
	if lat < -90 || lat > 90 {
		return domain.GeoPoint{}, errors.New(latKey + " must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return domain.GeoPoint{}, errors.New(lonKey + " must be between -180 and 180")
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}

// NearestPlaceHandler resolves a coordinate onto the closest catalog entry.
func NearestPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pt, err := parseLatLon(c, "lat", "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		place := deps.Places.Nearest(c.Context(), pt)
		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(place)
	}
}

// GetPlaceHandler returns a single catalog entry by ID.
func GetPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		place, err := deps.Places.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, domain.ErrPlaceNotFound) {
				return errNotFound(c, "place not found")
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(place)
	}
}

// EstimateHandler returns a route estimate between two coordinates.
func EstimateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin, err := parseLatLon(c, "origin_lat", "origin_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		dest, err := parseLatLon(c, "dest_lat", "dest_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		est := deps.Estimates.Estimate(c.Context(), origin, dest)

		source := "synthetic"
		if est.Curated {
			source = "curated"
		}
		metrics.EstimatesComputed.WithLabelValues(source).Inc()

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(est)
	}
}

// quoteRequest is the POST /v1/quotes body.
type quoteRequest struct {
	DistanceMeters float64 `json:"distance_meters"`
	Tier           string  `json:"tier"`
	At             string  `json:"at,omitempty"` // RFC 3339, defaults to now
}

// QuoteHandler prices a trip for a distance and service tier.
func QuoteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req quoteRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		var at time.Time
		if req.At != "" {
			parsed, err := time.Parse(time.RFC3339, req.At)
			if err != nil {
				return errBadRequest(c, "at must be RFC 3339")
			}
			at = parsed
		}

		quote, err := deps.Fares.Quote(c.Context(), req.DistanceMeters, domain.Tier(req.Tier), at)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		metrics.FareQuotesIssued.WithLabelValues(string(quote.Tier), strconv.FormatBool(quote.SurgeApplied)).Inc()
		return c.JSON(quote)
	}
}

// createTripRequest is the POST /v1/trips body.
type createTripRequest struct {
	Origin      domain.GeoPoint `json:"origin"`
	Destination domain.GeoPoint `json:"destination"`
}

// tripResponse pairs a session snapshot with the estimate it replays.
type tripResponse struct {
	Trip     interface{}          `json:"trip"`
	Estimate domain.RouteEstimate `json:"estimate"`
}

// CreateTripHandler estimates a route and registers an idle tracking
// session replaying it.
func CreateTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createTripRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Origin.Lat < -90 || req.Origin.Lat > 90 || req.Destination.Lat < -90 || req.Destination.Lat > 90 {
			return errBadRequest(c, "latitude must be between -90 and 90")
		}
		if req.Origin.Lon < -180 || req.Origin.Lon > 180 || req.Destination.Lon < -180 || req.Destination.Lon > 180 {
			return errBadRequest(c, "longitude must be between -180 and 180")
		}

		est := deps.Estimates.Estimate(c.Context(), req.Origin, req.Destination)

		sess, err := deps.Tracking.Create(c.Context(), est)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidRoute) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		LoggerFromCtx(c.UserContext()).Info("trip created",
			"trip_id", sess.ID(),
			"distance_m", est.DistanceMeters,
			"curated", est.Curated)

		metrics.TrackingSessionsActive.Set(float64(deps.Tracking.Count()))
		return c.Status(201).JSON(tripResponse{Trip: sess.State(true), Estimate: est})
	}
}

// ListTripsHandler lists all registered tracking sessions.
func ListTripsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Tracking.List())
	}
}

// GetTripHandler returns one session's state. ?include_path=true adds the
// full path.
func GetTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Tracking.Get(c.Params("id"))
		if err != nil {
			return errNotFound(c, "trip not found")
		}
		includePath := c.QueryBool("include_path", false)
		return c.JSON(sess.State(includePath))
	}
}

// StartTripHandler starts or resumes a session.
func StartTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Tracking.Get(c.Params("id"))
		if err != nil {
			return errNotFound(c, "trip not found")
		}
		sess.Start()
		return c.JSON(sess.State(false))
	}
}

// PauseTripHandler pauses a running session.
func PauseTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Tracking.Get(c.Params("id"))
		if err != nil {
			return errNotFound(c, "trip not found")
		}
		sess.Pause()
		return c.JSON(sess.State(false))
	}
}

// ResetTripHandler returns a session to idle at the start of its path.
func ResetTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Tracking.Get(c.Params("id"))
		if err != nil {
			return errNotFound(c, "trip not found")
		}
		sess.Reset()
		return c.JSON(sess.State(false))
	}
}

// DeleteTripHandler stops and removes a session.
func DeleteTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := deps.Tracking.Get(c.Params("id")); err != nil {
			return errNotFound(c, "trip not found")
		}
		deps.Tracking.Remove(c.Params("id"))
		LoggerFromCtx(c.UserContext()).Info("trip removed", "trip_id", c.Params("id"))
		metrics.TrackingSessionsActive.Set(float64(deps.Tracking.Count()))
		return c.SendStatus(204)
	}
}
