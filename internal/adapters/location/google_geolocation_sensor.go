package location

import (
	"attendance-service/internal/domain"
	"attendance-service/internal/platform/httpx"
	"attendance-service/internal/platform/obs"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

const defaultGeolocationURL = "https://www.googleapis.com/geolocation/v1/geolocate"

// FixCache stores resolved fixes keyed by the observed access point set.
type FixCache interface {
	Get(ctx context.Context, key string) (domain.Fix, bool, error)
	Put(ctx context.Context, key string, fix domain.Fix, ttl time.Duration) error
}

// GoogleGeolocationSensor resolves a position from the Wi-Fi access points a
// device can see, using the Google Geolocation API.
//
// The configured value is shared; WithAccessPoints returns a per-request copy
// bound to one device's scan. Safe for concurrent use.
type GoogleGeolocationSensor struct {
	session  *http.Client
	apiKey   string
	endpoint string
	cache    FixCache
	cacheTTL time.Duration

	accessPoints []domain.AccessPoint
}

type GoogleOption func(*GoogleGeolocationSensor)

// WithEndpoint overrides the API URL. Used by tests.
func WithEndpoint(url string) GoogleOption {
	return func(g *GoogleGeolocationSensor) { g.endpoint = url }
}

func WithHTTPClient(c *http.Client) GoogleOption {
	return func(g *GoogleGeolocationSensor) { g.session = c }
}

// WithFixCache enables reuse of earlier lookups for requests that accept a
// cached position.
func WithFixCache(c FixCache, ttl time.Duration) GoogleOption {
	return func(g *GoogleGeolocationSensor) {
		g.cache = c
		g.cacheTTL = ttl
	}
}

func NewGoogleGeolocationSensor(apiKey string, opts ...GoogleOption) *GoogleGeolocationSensor {
	g := &GoogleGeolocationSensor{
		session:  &http.Client{Timeout: 10 * time.Second},
		apiKey:   apiKey,
		endpoint: defaultGeolocationURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GoogleGeolocationSensor) WithAccessPoints(aps []domain.AccessPoint) *GoogleGeolocationSensor {
	c := *g
	c.accessPoints = slices.Clone(aps)
	return &c
}

type geolocateWiFi struct {
	MACAddress     string `json:"macAddress"`
	SignalStrength int    `json:"signalStrength,omitempty"`
}

type geolocateRequest struct {
	ConsiderIP       bool            `json:"considerIp"`
	WiFiAccessPoints []geolocateWiFi `json:"wifiAccessPoints"`
}

type geolocateResponse struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
}

type geolocateErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

func (g *GoogleGeolocationSensor) CurrentLocation(
	ctx context.Context,
	opts domain.LocationOptions,
) (_ domain.Fix, err error) {
	defer obs.Time(ctx, "google.geolocate")(&err)

	if g.apiKey == "" {
		return domain.Fix{}, domain.NewLocationError(domain.Unsupported, "server-side positioning is not configured")
	}
	if len(g.accessPoints) < 2 {
		return domain.Fix{}, domain.NewLocationError(domain.PositionUnavailable, "at least two Wi-Fi access points are required, got %d", len(g.accessPoints))
	}

	key := accessPointKey(g.accessPoints)

	// A zero MaxCachedAge asks for a fresh fix, so the cache is only read
	// when the caller accepts an older one.
	if g.cache != nil && opts.MaxCachedAge > 0 {
		fix, ok, err := g.cache.Get(ctx, key)
		if err != nil {
			log.Printf("fix cache read failed: %v", err)
		} else if ok && time.Since(fix.CapturedAt) <= opts.MaxCachedAge {
			return fix, nil
		}
	}

	body := geolocateRequest{
		// High accuracy forbids falling back to coarse IP positioning.
		ConsiderIP:       !opts.HighAccuracy,
		WiFiAccessPoints: make([]geolocateWiFi, 0, len(g.accessPoints)),
	}
	for _, ap := range g.accessPoints {
		body.WiFiAccessPoints = append(body.WiFiAccessPoints, geolocateWiFi{
			MACAddress:     ap.MACAddress,
			SignalStrength: ap.SignalStrength,
		})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return domain.Fix{}, fmt.Errorf("marshal geolocate request: %w", err)
	}

	endpoint := g.endpoint + "?key=" + g.apiKey
	resp, err := httpx.DoWithRetry(ctx, g.session, 3, func() (*http.Request, error) {
		return httpx.NewJSONRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return domain.Fix{}, classifyGoogleErr(err)
	}
	defer resp.Body.Close()

	var decoded geolocateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Fix{}, fmt.Errorf("decode geolocate response: %w", err)
	}

	fix := domain.Fix{
		Coordinates:    domain.Coordinates{Lat: decoded.Location.Lat, Lon: decoded.Location.Lng},
		AccuracyMeters: decoded.Accuracy,
		CapturedAt:     time.Now(),
	}

	if g.cache != nil && g.cacheTTL > 0 {
		if err := g.cache.Put(ctx, key, fix, g.cacheTTL); err != nil {
			log.Printf("fix cache write failed: %v", err)
		}
	}

	return fix, nil
}

func classifyGoogleErr(err error) error {
	// The request URL carries the API key; keep it out of error text.
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}

	var se *httpx.StatusError
	if !errors.As(err, &se) {
		// Context and network errors are classified by the caller.
		return err
	}

	var body geolocateErrorBody
	reason := ""
	if json.Unmarshal([]byte(se.Body), &body) == nil && len(body.Error.Errors) > 0 {
		reason = body.Error.Errors[0].Reason
	}

	switch {
	case se.Code == http.StatusNotFound || reason == "notFound":
		return domain.NewLocationError(domain.PositionUnavailable, "no position found for the reported access points")
	case se.Code == http.StatusForbidden || reason == "keyInvalid":
		return domain.NewLocationError(domain.PermissionDenied, "geolocation API rejected the request: %s", reasonOr(reason, "forbidden"))
	case se.Code == http.StatusTooManyRequests:
		return domain.NewLocationError(domain.PositionUnavailable, "geolocation API quota exhausted")
	default:
		return domain.NewLocationError(domain.PositionUnavailable, "geolocation API: %v", se)
	}
}

func reasonOr(reason, fallback string) string {
	if reason == "" {
		return fallback
	}
	return reason
}

// accessPointKey is order-independent: the same scan in any order maps to
// the same key.
func accessPointKey(aps []domain.AccessPoint) string {
	macs := make([]string, 0, len(aps))
	for _, ap := range aps {
		macs = append(macs, strings.ToLower(strings.TrimSpace(ap.MACAddress)))
	}
	slices.Sort(macs)
	return strings.Join(macs, ",")
}
